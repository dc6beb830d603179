package prices

import (
	"slices"
	"time"

	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/slice"
	"github.com/icodeforyou/spotprice-go/types"
)

type Day string

const (
	DayAll      Day = "all"
	DayToday    Day = "today"
	DayTomorrow Day = "tomorrow"
)

func ParseDay(s string) (Day, bool) {
	switch Day(s) {
	case DayAll, DayToday, DayTomorrow:
		return Day(s), true
	case "":
		return DayAll, true
	default:
		return "", false
	}
}

// SortByStart returns a copy of points ordered by StartDate. Ties keep their input order.
func SortByStart(points []types.PricePoint) []types.PricePoint {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b types.PricePoint) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return sorted
}

// SelectCurrentAndNext picks the first point (by start date) whose interval
// contains now, and the first point starting exactly when that one ends.
func SelectCurrentAndNext(points []types.PricePoint, now time.Time) (types.PricePoint, types.PricePoint, error) {
	sorted := SortByStart(points)

	current, ok := slice.Find(sorted, func(p types.PricePoint) bool {
		return p.Contains(now)
	})
	if !ok {
		return types.PricePoint{}, types.PricePoint{}, &NoCurrentPriceError{At: now}
	}

	next, ok := slice.Find(sorted, func(p types.PricePoint) bool {
		return p.StartDate.Equal(current.EndDate)
	})
	if !ok {
		return types.PricePoint{}, types.PricePoint{}, &NoNextPriceError{After: current.EndDate}
	}

	return current, next, nil
}

// Window is a calendar day in some location, [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayWindows returns the calendar days today and tomorrow relative to now in loc.
// The end is exclusive, so unlike an inclusive end one microsecond before
// midnight it also admits starts within that last microsecond.
func DayWindows(now time.Time, loc *time.Location) (today Window, tomorrow Window) {
	startOfToday := hours.StartOfDay(now, loc)
	startOfTomorrow := hours.NextDay(startOfToday)
	today = Window{Start: startOfToday, End: startOfTomorrow}
	tomorrow = Window{Start: startOfTomorrow, End: hours.NextDay(startOfTomorrow)}
	return today, tomorrow
}

// SelectWindow returns the points starting today or tomorrow, in input order.
// The result is empty, never nil, when nothing matches.
func SelectWindow(points []types.PricePoint, now time.Time, loc *time.Location) []types.PricePoint {
	today, tomorrow := DayWindows(now, loc)
	return slice.Filter(points, func(p types.PricePoint) bool {
		return today.Contains(p.StartDate) || tomorrow.Contains(p.StartDate)
	})
}

func SelectToday(points []types.PricePoint, now time.Time, loc *time.Location) []types.PricePoint {
	today, _ := DayWindows(now, loc)
	return slice.Filter(points, func(p types.PricePoint) bool {
		return today.Contains(p.StartDate)
	})
}

// SelectTomorrow is empty until the day-ahead prices are published.
func SelectTomorrow(points []types.PricePoint, now time.Time, loc *time.Location) []types.PricePoint {
	_, tomorrow := DayWindows(now, loc)
	return slice.Filter(points, func(p types.PricePoint) bool {
		return tomorrow.Contains(p.StartDate)
	})
}

func SelectDay(points []types.PricePoint, day Day, now time.Time, loc *time.Location) []types.PricePoint {
	switch day {
	case DayToday:
		return SelectToday(points, now, loc)
	case DayTomorrow:
		return SelectTomorrow(points, now, loc)
	default:
		return SelectWindow(points, now, loc)
	}
}
