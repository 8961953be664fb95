// Package cli contains shared helpers for the atena command line:
// typed command errors, output formatting, and signal-aware contexts.
package cli
