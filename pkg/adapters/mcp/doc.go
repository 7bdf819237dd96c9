// Package mcp exposes a running espalier engine to agents over the Model
// Context Protocol: tools to list and sample outputs and to move controls,
// and the espalier://graph resource.
package mcp
