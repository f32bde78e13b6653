package domain

import "time"

// Clock supplies the current time. Injected so state transitions that
// depend on "now" (invitation expiry, booking response timestamps) are
// deterministic under test.
type Clock interface {
	Now() time.Time
}
