// Package clock abstracts the logical time source the registry stamps
// credentials with. Production uses the system clock; tests pin time so
// identifier derivation and the year bound are reproducible.
package clock

import "time"

// Clock yields the current logical time as Unix seconds. The substrate
// guarantees it is monotonically non-decreasing across committed operations.
type Clock interface {
	Now() int64
}

// System reads the wall clock.
type System struct{}

func (System) Now() int64 {
	return time.Now().Unix()
}

// Fixed is a settable clock for tests.
type Fixed struct {
	Unix int64
}

func (f *Fixed) Now() int64 {
	return f.Unix
}

// Set moves the fixed clock to the given Unix second.
func (f *Fixed) Set(unix int64) {
	f.Unix = unix
}

// secondsPerYear is a flat 365-day year. ApproxYear inherits the resulting
// leap-year drift; see below.
const secondsPerYear = 31_536_000

// ApproxYear converts Unix seconds to a calendar year using a flat
// 365-day-year division. This deliberately ignores leap years, so the
// derived year drifts ahead of the true calendar by roughly one day every
// four years. The graduation-year upper bound is defined in terms of this
// approximation, so it must not be replaced with a calendar conversion.
func ApproxYear(unixSeconds int64) int {
	return 1970 + int(unixSeconds/secondsPerYear)
}
