// Package notifier delivers poll-loop notices to the configured Telegram chat.
//
// Delivery is synchronous and best-effort: one attempt per notice, bounded by
// a send timeout and an outgoing rate limit. Failures come back as
// *DeliveryError; the caller logs them and moves on.
//
// # History
//
// For debugging and operator visibility, the service keeps a small in-memory
// history of recently delivered notices. Every attempt is also appended to the
// optional journal (see package storage).
package notifier
