// Package cooldown gates repeatable actions on "last fired tick" values.
//
// All timers are plain tick counters owned by the single simulation thread.
// A clock that moved backwards (now < last) counts as elapsed so a world time
// reset can never wedge a timer shut.
package cooldown

// Elapsed reports whether at least ticks have passed since last.
func Elapsed(now, last, ticks uint64) bool {
	if now < last {
		return true
	}
	return now-last >= ticks
}

// Exceeded reports whether strictly more than ticks have passed since last.
func Exceeded(now, last, ticks uint64) bool {
	if now < last {
		return true
	}
	return now-last > ticks
}

// Remaining returns how many ticks are left before Elapsed(now, last, ticks) holds.
func Remaining(now, last, ticks uint64) uint64 {
	if Elapsed(now, last, ticks) {
		return 0
	}
	return (last + ticks) - now
}
