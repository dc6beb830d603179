package prices

import (
	"testing"
	"time"

	"github.com/icodeforyou/spotprice-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(price float64, start time.Time, d time.Duration) types.PricePoint {
	return types.PricePoint{Price: price, StartDate: start, EndDate: start.Add(d)}
}

// hourly builds contiguous one hour points starting at start.
func hourly(start time.Time, prices ...float64) []types.PricePoint {
	points := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = point(p, start.Add(time.Duration(i)*time.Hour), time.Hour)
	}
	return points
}

func TestSelectCurrentAndNext(t *testing.T) {
	start := time.Date(2022, time.November, 14, 21, 0, 0, 0, time.UTC)
	feed := hourly(start, 13.494, 17.62, 15.0)

	t.Run("half past ten", func(t *testing.T) {
		now := time.Date(2022, time.November, 14, 22, 30, 0, 0, time.UTC)
		current, next, err := SelectCurrentAndNext(feed, now)
		require.NoError(t, err)
		assert.Equal(t, 17.62, current.Price)
		assert.Equal(t, 15.0, next.Price)
	})

	t.Run("unsorted input", func(t *testing.T) {
		shuffled := []types.PricePoint{feed[2], feed[0], feed[1]}
		now := time.Date(2022, time.November, 14, 21, 0, 0, 0, time.UTC)
		current, next, err := SelectCurrentAndNext(shuffled, now)
		require.NoError(t, err)
		assert.Equal(t, 13.494, current.Price)
		assert.Equal(t, 17.62, next.Price)
		assert.Equal(t, feed[2], shuffled[0], "input must not be reordered")
	})

	t.Run("start is inclusive and end exclusive", func(t *testing.T) {
		current, _, err := SelectCurrentAndNext(feed, start.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 17.62, current.Price)

		current, _, err = SelectCurrentAndNext(feed, start.Add(2*time.Hour-time.Nanosecond))
		require.NoError(t, err)
		assert.Equal(t, 17.62, current.Price)
	})

	t.Run("before first interval", func(t *testing.T) {
		_, _, err := SelectCurrentAndNext(feed, start.Add(-time.Second))
		var noCurrent *NoCurrentPriceError
		require.ErrorAs(t, err, &noCurrent)
		assert.Equal(t, start.Add(-time.Second), noCurrent.At)
	})

	t.Run("at end of last interval", func(t *testing.T) {
		_, _, err := SelectCurrentAndNext(feed, start.Add(3*time.Hour))
		var noCurrent *NoCurrentPriceError
		assert.ErrorAs(t, err, &noCurrent)
	})

	t.Run("last interval has no successor", func(t *testing.T) {
		_, _, err := SelectCurrentAndNext(feed, start.Add(2*time.Hour+time.Minute))
		var noNext *NoNextPriceError
		require.ErrorAs(t, err, &noNext)
		assert.Equal(t, start.Add(3*time.Hour), noNext.After)
	})

	t.Run("gap after current", func(t *testing.T) {
		gapped := []types.PricePoint{feed[0], feed[2]}
		_, _, err := SelectCurrentAndNext(gapped, start.Add(10*time.Minute))
		var noNext *NoNextPriceError
		assert.ErrorAs(t, err, &noNext)
	})

	t.Run("empty feed", func(t *testing.T) {
		_, _, err := SelectCurrentAndNext(nil, start)
		var noCurrent *NoCurrentPriceError
		assert.ErrorAs(t, err, &noCurrent)
	})

	t.Run("overlapping points pick the earliest start", func(t *testing.T) {
		long := point(99.0, start, 2*time.Hour)
		overlapping := []types.PricePoint{feed[1], feed[2], long}
		current, next, err := SelectCurrentAndNext(overlapping, start.Add(90*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 99.0, current.Price)
		assert.Equal(t, 15.0, next.Price)
	})

	t.Run("duplicates keep input order", func(t *testing.T) {
		dup := feed[1]
		dup.Price = 1.0
		current, _, err := SelectCurrentAndNext([]types.PricePoint{feed[1], dup, feed[2]}, start.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 17.62, current.Price)
	})
}

func TestSelectCurrentAndNextProperty(t *testing.T) {
	start := time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC)
	feed := hourly(start, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)

	// Every instant but the ones within the last hour has a current and next point.
	for now := start; now.Before(start.Add(11 * time.Hour)); now = now.Add(7 * time.Minute) {
		current, next, err := SelectCurrentAndNext(feed, now)
		require.NoError(t, err, "now=%s", now)
		assert.True(t, !current.StartDate.After(now) && now.Before(current.EndDate))
		assert.True(t, next.StartDate.Equal(current.EndDate))
	}
}

func TestSelectWindow(t *testing.T) {
	now := time.Date(2024, time.March, 25, 12, 0, 0, 0, time.UTC)
	yesterday := hourly(time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC), make([]float64, 24)...)
	today := hourly(time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC), make([]float64, 24)...)
	tomorrow := hourly(time.Date(2024, time.March, 26, 0, 0, 0, 0, time.UTC), make([]float64, 24)...)
	dayAfter := hourly(time.Date(2024, time.March, 27, 0, 0, 0, 0, time.UTC), make([]float64, 24)...)

	t.Run("only today published", func(t *testing.T) {
		feed := append(append([]types.PricePoint{}, yesterday...), today...)
		got := SelectWindow(feed, now, time.UTC)
		assert.Equal(t, today, got)
		assert.Empty(t, SelectTomorrow(feed, now, time.UTC))
		assert.NotNil(t, SelectTomorrow(feed, now, time.UTC))
	})

	t.Run("today and tomorrow", func(t *testing.T) {
		var feed []types.PricePoint
		feed = append(feed, yesterday...)
		feed = append(feed, today...)
		feed = append(feed, tomorrow...)
		feed = append(feed, dayAfter...)
		got := SelectWindow(feed, now, nil)
		assert.Len(t, got, 48)
		assert.Equal(t, today[0], got[0])
		assert.Equal(t, tomorrow[23], got[47])
		assert.Equal(t, today, SelectToday(feed, now, time.UTC))
		assert.Equal(t, tomorrow, SelectTomorrow(feed, now, time.UTC))
	})

	t.Run("input order is preserved", func(t *testing.T) {
		feed := []types.PricePoint{tomorrow[3], today[5], yesterday[1], today[0]}
		got := SelectWindow(feed, now, time.UTC)
		assert.Equal(t, []types.PricePoint{tomorrow[3], today[5], today[0]}, got)
	})

	t.Run("boundaries", func(t *testing.T) {
		lastOfTomorrow := point(1, time.Date(2024, time.March, 26, 23, 59, 59, 999999999, time.UTC), time.Nanosecond)
		firstOfDayAfter := point(2, time.Date(2024, time.March, 27, 0, 0, 0, 0, time.UTC), time.Hour)
		lastOfYesterday := point(3, time.Date(2024, time.March, 24, 23, 59, 59, 0, time.UTC), time.Second)
		got := SelectWindow([]types.PricePoint{lastOfTomorrow, firstOfDayAfter, lastOfYesterday}, now, time.UTC)
		assert.Equal(t, []types.PricePoint{lastOfTomorrow}, got)
	})

	t.Run("no points", func(t *testing.T) {
		got := SelectWindow(nil, now, time.UTC)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("non utc location", func(t *testing.T) {
		helsinki, err := time.LoadLocation("Europe/Helsinki")
		require.NoError(t, err)
		// Local midnight on 2024-03-25 is 22:00 UTC the day before.
		feed := hourly(time.Date(2024, time.March, 24, 21, 0, 0, 0, time.UTC), make([]float64, 3)...)
		got := SelectToday(feed, now, helsinki)
		assert.Equal(t, feed[1:], got)
	})
}

func TestSelectDay(t *testing.T) {
	now := time.Date(2024, time.March, 25, 12, 0, 0, 0, time.UTC)
	feed := hourly(time.Date(2024, time.March, 25, 23, 0, 0, 0, time.UTC), 1, 2)

	assert.Len(t, SelectDay(feed, DayAll, now, time.UTC), 2)
	assert.Equal(t, feed[:1], SelectDay(feed, DayToday, now, time.UTC))
	assert.Equal(t, feed[1:], SelectDay(feed, DayTomorrow, now, time.UTC))

	day, ok := ParseDay("")
	assert.True(t, ok)
	assert.Equal(t, DayAll, day)
	_, ok = ParseDay("yesterday")
	assert.False(t, ok)
}

func TestCheckContiguous(t *testing.T) {
	start := time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC)
	feed := hourly(start, 1, 2, 3)
	assert.Empty(t, CheckContiguous(feed))

	gapped := []types.PricePoint{feed[2], feed[0]}
	anomalies := CheckContiguous(gapped)
	require.Len(t, anomalies, 1)
	assert.Equal(t, AnomalyGap, anomalies[0].Kind)
	assert.Equal(t, time.Hour, anomalies[0].Delta)

	overlapping := append(feed, point(4, start.Add(30*time.Minute), time.Hour))
	anomalies = CheckContiguous(overlapping)
	require.Len(t, anomalies, 2)
	assert.Equal(t, AnomalyOverlap, anomalies[0].Kind)
	assert.Equal(t, 30*time.Minute, anomalies[0].Delta)
}
