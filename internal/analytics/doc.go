// Package analytics implements the pure, request-scoped computations behind every query:
// ARIMA forecasting, volatility ranking, clustering-based coin selection, the mean filter and
// the buy/sell/hold recommendation policy. Nothing here performs I/O; callers hand in a
// market.Table (or a coin series) and receive plain values or errs-kinded errors.
package analytics
