// Package httpx holds the small HTTP toolkit shared by the API handlers:
// error-returning handlers, a JSON error handler that maps domain errors to
// status codes, and JSON request/response helpers.
//
//	eh := httpx.JSONErrorHandler(log, handlers.MapError)
//	r.Get("/api/email-logs", httpx.Wrap(h.listLogs, eh))
package httpx
