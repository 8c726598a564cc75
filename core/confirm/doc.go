// Package confirm provides the yes/no oracle consulted before destructive or
// creating actions: container creation, database creation and deletion, and
// uploads that are not forced.
//
// Engines receive an Oracle and never read stdin themselves. The CLI wires a
// Prompt on os.Stdin, wrapped in Forced when --force or --yes is given.
package confirm
