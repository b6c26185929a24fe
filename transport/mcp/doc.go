// Package mcp provides a Model Context Protocol interface to the game.
//
// The Client is a thin proxy: every tool call translates into a REST
// API request against the running server, and the JSON responses are
// rendered as text with an ASCII map. Keeping the MCP layer stateless
// means a session driven by an AI agent and one driven by a browser
// stay consistent, since both funnel through the same service.
//
// Tools cover session management, movement, riddle answers, view
// navigation and progress resets.
package mcp
