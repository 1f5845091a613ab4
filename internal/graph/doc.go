// Package graph discovers PipeWire audio devices and wires them together.
//
// Enumeration runs pw-dump in a dedicated worker goroutine and streams every
// node and port it reports back to the caller, which stops collecting once the
// stream has been quiet for a short period. Devices are assembled from their
// ports through a fixed role-alias table (capture_FL feeds OutputFL, and so on).
//
// Links are owned by long-lived pw-cli sessions: closing the session tears the
// link objects down. Every link is represented by a LinkHandle, and a LinkSlot
// guarantees the previous handle is cancelled before a new one is installed.
// LinkDevices retries the whole enumerate-resolve-link sequence because device
// and port objects appear asynchronously; running out of attempts is logged and
// never reported as an error.
package graph
