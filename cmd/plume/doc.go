// Package main hosts the Plume CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into project
// and section operations, phase transfers, suggestion triage, version
// history inspection, and document export. It centralizes configuration
// resolution, workspace locking, and logger setup so subcommands can focus
// on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the heavy lifting lives in
// reusable workflow components.
package main
