// Package cli provides the interactive SmartPool command-line client.
//
// App wraps the client services in a small REPL. Without a session the
// user works as guest and data stays on this device. A signed-in user
// without remote credentials works in local mode; with an ID token the
// app mirrors writes to the remote store and pulls both collections in
// the background at start-up. Listing commands wait for that pull
// (bounded by Options.SyncWait) so they show merged data.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or input ends.
package cli
