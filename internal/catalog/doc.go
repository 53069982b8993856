// Package catalog holds the registry of document types docagent can produce.
//
// The catalog is reference data: it is loaded once at process start (from the
// embedded default or a YAML file) and never mutated afterwards. Entry order is
// the display order.
package catalog
