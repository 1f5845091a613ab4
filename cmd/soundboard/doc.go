// Command soundboard is the client for the soundboard daemon. Each
// subcommand sends one request over the daemon socket and prints the reply;
// failures go to stderr with exit status 1.
package main
