// Package safego provides a panic-recovering goroutine launcher for background work.
package safego

import "log/slog"

// Go launches fn in a new goroutine. If fn panics, the panic is recovered and
// logged rather than crashing the process. All fire-and-forget goroutines in
// the backend (the retention purge sweep, the session/OTP expiry cleaner, the
// metrics listener) go through this wrapper so a bug in one loop cannot take
// the API server down with it or die silently.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
