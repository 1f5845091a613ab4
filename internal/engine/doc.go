// Package engine implements the audio routing engine: one main sink, a fixed
// set of independent layers sharing the same mixer, and the link that routes
// the selected capture device into the virtual microphone.
//
// Engine is not safe for concurrent use. Shared wraps it with a FIFO lock so
// the IPC server, the loop poller and the hotplug watcher can take turns.
package engine
