// Package main hosts the likebot CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into
// processing runs, schema maintenance, and configuration scaffolding.
// It centralizes configuration resolution and structured logging setup
// so subcommands can focus on user experience instead of wiring.
package main
