// Package poller runs the homework status poll loop.
//
// Each cycle fetches a snapshot, validates it, translates the first homework
// and notifies only on a transition. Failures of any stage become one error
// notice per distinct message; repeats are logged and suppressed.
//
// The loop owns two pieces of state for the lifetime of the process: the
// time cursor passed to the API and the last notified status/error. Both are
// written only by the goroutine running Run; the cursor may be read from
// other goroutines through Cursor.
package poller
