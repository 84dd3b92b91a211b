// Package output formats command results for the terminal.
//
// Every command prints through a Printer. In the default text format each
// command supplies its own layout; json and yaml print the decoded server
// payload instead, which makes the CLI usable from scripts.
package output
