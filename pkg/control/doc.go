// Package control provides the thread-safe inputs that drive a graph from
// outside: sliders for numeric values and switches for toggles. They are
// written by user interfaces (terminal, HTTP, MCP) and read by input nodes
// on the scheduler goroutines.
package control
