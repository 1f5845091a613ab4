// Package audio provides the playback primitives behind the routing engine.
//
// Files are decoded by an ffmpeg child process into interleaved 32-bit float
// PCM. A Sink plays at most one source at a time with its own pause flag and
// volume; a Mixer sums any number of sinks with hard clipping and is pulled by
// the output stream, which talks to the PulseAudio protocol server (native
// PulseAudio or pipewire-pulse).
package audio
