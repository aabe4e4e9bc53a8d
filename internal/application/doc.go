// Package application wires the item catalog, the bundle planner, the HTTP
// handlers and router, and the server instance together, so the main package
// only deals with CLI parsing, telemetry setup and shutdown.
package application
