// Package cli provides the interactive Rooznegar terminal client.
//
// On start the session gate asks for first-time setup or for the password.
// After that a REPL records voice entries from the microphone and lets the
// user browse, edit, tag, export and delete them.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
