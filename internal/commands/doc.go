// Package commands turns wire requests into typed commands and executes them
// against the shared engine.
//
// Parse matches the request name against a closed set and pre-parses string
// arguments into optionals; a missing or malformed argument becomes an unset
// optional that the Dispatcher reports as a failure before the engine is
// touched. The Dispatcher implements ipc.Handler.
package commands
