// Package dataverse exposes Microsoft Dataverse metadata and record
// operations as Model Context Protocol tools.
//
// The package wires the OData client in the api subpackage and the client
// credential token source in the auth subpackage into an MCP server built
// on github.com/viant/mcp. Every tool performs a single authenticated GET,
// reshapes the JSON response and returns it as text content; the only state
// shared between calls is the cached bearer token.
package dataverse
