// Package daemon holds the long-running helpers that sit beside the IPC
// server: the single-instance runtime lock, the loop poller that restarts a
// looped file once it runs dry, and the udev watcher that relinks the mic
// when sound hardware comes or goes.
//
// Every helper that touches the engine goes through engine.Shared so it is
// ordered with client commands.
package daemon
