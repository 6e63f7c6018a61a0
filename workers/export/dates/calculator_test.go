package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(zap.NewNop(), 16, 0)
	require.NoError(t, err)
	return calc
}

func placed(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(BusinessTimeZone)
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return ts
}

func TestComputeDespatchWindows(t *testing.T) {
	calc := newTestCalculator(t)

	// Week of Monday 2026-03-02 through Sunday 2026-03-08.
	tests := []struct {
		name     string
		placedAt string
		despatch string
	}{
		{"monday before cutoff", "2026-03-02 15:59", "2026-03-03"}, // Tuesday
		{"monday at cutoff", "2026-03-02 16:00", "2026-03-04"},     // Wednesday
		{"monday after cutoff", "2026-03-02 18:30", "2026-03-04"},
		{"tuesday before cutoff", "2026-03-03 09:00", "2026-03-04"}, // Wednesday
		{"tuesday at cutoff", "2026-03-03 16:00", "2026-03-05"},     // Thursday
		{"wednesday before cutoff", "2026-03-04 15:59", "2026-03-05"},
		{"wednesday at cutoff rolls a week", "2026-03-04 16:00", "2026-03-10"},
		{"thursday morning", "2026-03-05 08:00", "2026-03-10"},
		{"friday evening", "2026-03-06 20:00", "2026-03-10"},
		{"saturday any time", "2026-03-07 12:00", "2026-03-10"},
		{"sunday any time", "2026-03-08 23:59", "2026-03-10"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := calc.Compute(placed(t, tc.placedAt))
			assert.Equal(t, tc.despatch, w.DespatchDate.Format("2006-01-02"))
			assert.Equal(t, tc.despatch, w.DeliveryDate.AddDate(0, 0, -1).Format("2006-01-02"),
				"delivery must be despatch + 1 day")
		})
	}
}

func TestComputeCutoffMinuteEquality(t *testing.T) {
	calc, err := NewCalculator(zap.NewNop(), 16, 30)
	require.NoError(t, err)

	before := calc.Compute(placed(t, "2026-03-02 16:29"))
	assert.Equal(t, time.Tuesday, before.DespatchDate.Weekday())

	exact := calc.Compute(placed(t, "2026-03-02 16:30"))
	assert.Equal(t, time.Wednesday, exact.DespatchDate.Weekday())
}

func TestComputeNeverSameDayDespatch(t *testing.T) {
	calc := newTestCalculator(t)

	// Placed on a Tuesday before cutoff: despatch is the Wednesday of
	// the same week, never the Tuesday itself.
	w := calc.Compute(placed(t, "2026-03-03 10:00"))
	assert.Equal(t, "2026-03-04", w.DespatchDate.Format("2006-01-02"))
	assert.True(t, w.DespatchDate.After(placed(t, "2026-03-03 10:00")))
}

func TestComputeLabels(t *testing.T) {
	calc := newTestCalculator(t)

	w := calc.Compute(placed(t, "2026-03-02 12:00"))
	assert.Equal(t, "04/03/2026", w.DeliveryLabel)
	assert.Equal(t, "Packing 03.03.26", w.PackingLabel)
}

func TestComputeConvertsToBusinessTimeZone(t *testing.T) {
	calc := newTestCalculator(t)

	// Monday 15:30 UTC in March is Monday 15:30 in London (GMT), still
	// before cutoff. The same instant expressed in UTC+4 is 19:30 but
	// must not roll the window.
	utcPlus4 := time.FixedZone("UTC+4", 4*3600)
	ts := time.Date(2026, 3, 2, 19, 30, 0, 0, utcPlus4)
	w := calc.Compute(ts)
	assert.Equal(t, time.Tuesday, w.DespatchDate.Weekday())
}

func TestComputeZeroTimeFallsBackToNow(t *testing.T) {
	calc := newTestCalculator(t)

	w := calc.Compute(time.Time{})
	assert.False(t, w.DespatchDate.IsZero())
	assert.True(t, w.DespatchDate.After(time.Now().AddDate(0, 0, -1)))
	assert.Equal(t, w.DespatchDate.AddDate(0, 0, 1), w.DeliveryDate)
}

func TestNextWeekdayAdvancesFullWeekOnSameDay(t *testing.T) {
	loc, err := time.LoadLocation(BusinessTimeZone)
	require.NoError(t, err)

	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, loc)
	next := nextWeekday(tuesday, time.Tuesday)
	assert.Equal(t, "2026-03-10", next.Format("2006-01-02"))
}
