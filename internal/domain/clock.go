package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// expiry and freshness timestamps.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for the domain. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the current domain time source. The cache and resolvers use
// it so a single fake clock drives the whole core in tests.
func Clock() clockwork.Clock {
	return clock
}
