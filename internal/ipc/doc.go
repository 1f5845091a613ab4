// Package ipc carries daemon commands over a Unix domain socket.
//
// Every message is a little-endian uint32 length followed by that many bytes
// of JSON. A connection carries exactly one Request and one Response; the
// server keeps no per-connection state. The client applies dial, write and
// read deadlines so CLI commands fail fast when the daemon is offline.
package ipc
