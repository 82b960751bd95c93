// Package api exposes the lifecycle engine over a small HTTP admin surface:
// profile management, on-demand auto-update passes, reminder campaign
// scheduling and cancellation, health and Prometheus metrics.
//
// Handlers translate between JSON DTOs and domain types and never return
// raw error text to clients: HandleAPIError maps sentinel errors to status
// codes and safe messages, and logs the redacted detail with the trace ID.
package api
