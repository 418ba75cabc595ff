// Package forecast fits seasonal trend models to monthly revenue series and
// produces point forecasts with confidence bounds, validated against a
// held-out trailing window.
//
// The model is an ordinary least-squares fit of a linear trend plus yearly
// Fourier seasonality, optionally on log1p-transformed values for series
// with exponential growth. Validation reports MAE, RMSE, a zero-safe MAPE
// and bias over the holdout months.
package forecast
