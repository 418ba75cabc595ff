// Package http exposes the ingestion and forecasting core to the dashboard
// frontend: the canonical revenue table, specification lists, CSV exports,
// the payroll ledger and the forecast endpoint. Filtering for display and
// all charting happen on the client; these handlers only serve the core's
// outputs.
package http
