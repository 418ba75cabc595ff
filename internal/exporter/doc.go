// Package exporter serializes canonical tables and forecast results to CSV,
// UTF-8 encoded with a BOM so spreadsheet tools pick the encoding up.
package exporter
