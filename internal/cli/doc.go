// Package cli is the interactive shell of fintrack: it wires the store,
// the secret vault, the bank client and the services together and exposes
// them as REPL commands.
package cli
