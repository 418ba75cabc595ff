// Package services is the glue between the pure ingestion/forecasting core
// and the HTTP surface. The core loader is stateless; the request-scoped
// memoization the dashboard needs lives here, keyed by source directory and
// newest file modification time.
package services
