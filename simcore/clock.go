package simcore

import "time"

// Clock supplies wall-clock elapsed time to the clock-pin generator. It is
// seamed out as an interface, grounded on core/core_suite_test.go's
// go:generate mockgen pattern for faking collaborators, so a clock pin's
// period-elapsed behaviour can be tested deterministically instead of
// sleeping in real time.
//
//go:generate mockgen -write_package_comment=false -package=simcore_test -destination=mock_clock_test.go github.com/sarchlab/bdfsim/simcore Clock
type Clock interface {
	Since(start time.Time) time.Duration
}

type wallClock struct{}

func (wallClock) Since(start time.Time) time.Duration { return time.Since(start) }
