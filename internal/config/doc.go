// Package config loads, normalizes, and validates soundboard configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: the runtime directory holding the socket and lock file,
// the audio defaults applied when the engine starts, the PipeWire node names
// and retry timings used for linking, and the external binaries the daemon
// shells out to.
//
// Configuration is read-only to the daemon. The only writer is CreateSample,
// used by `soundboard config init`.
package config
