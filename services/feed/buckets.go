package feed

import (
	game_constants "Recit/constants/game"
	"fmt"
	"time"
)

// Interval is a half-open time range; a nil bound is unbounded.
type Interval struct {
	From   *time.Time
	Before *time.Time
}

func dayStart(t time.Time, days int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+days, 0, 0, 0, 0, t.Location())
}

// StartDateInterval resolves a start date bucket relative to now, in the
// location of now. Weeks start on Sunday.
func StartDateInterval(bucket string, now time.Time) (Interval, error) {
	tomorrow := dayStart(now, 1)
	dayAfter := dayStart(now, 2)
	nextWeek := dayStart(now, 7-int(now.Weekday()))
	weekAfter := dayStart(nextWeek, 7)

	span := func(from, before time.Time) Interval {
		if before.Before(from) {
			before = from
		}
		return Interval{From: &from, Before: &before}
	}

	switch bucket {
	case game_constants.START_DATE_TODAY:
		return span(now, tomorrow), nil
	case game_constants.START_DATE_TOMORROW:
		return span(tomorrow, dayAfter), nil
	case game_constants.START_DATE_LATER_THIS_WEEK:
		return span(dayAfter, nextWeek), nil
	case game_constants.START_DATE_NEXT_WEEK:
		return span(nextWeek, weekAfter), nil
	case game_constants.START_DATE_LATER:
		return Interval{From: &weekAfter}, nil
	}
	return Interval{}, fmt.Errorf("unknown start date %q", bucket)
}
