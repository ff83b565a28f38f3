// Package cli assembles the prsweep command hierarchy, wiring configuration
// loading and structured logging into the cleanup subcommands.
package cli
