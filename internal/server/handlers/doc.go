// Package handlers contains HTTP handlers for the docagent HTTP API.
//
// This package provides handlers for:
//   - Health and catalog endpoints
//   - Repository metadata lookup
//   - Session workflow: view, select, generate, settlement, preview, download
//   - Request history from the journal
//
// Errors are written through the foundation/errors HTTPErrorAdapter so every
// failure carries the same JSON shape and a status derived from its category.
package handlers
