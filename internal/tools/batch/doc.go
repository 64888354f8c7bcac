// Package batch provides helpers for tools that act on several events in
// one call.
//
// This package includes helpers for:
//   - Parsing a parameter that holds one object or an array of objects
//   - Turning per-event insert results into per-item batch results
//   - Formatting batch results in a consistent JSON structure
//
// A failing item never hides the results of the others.
package batch
