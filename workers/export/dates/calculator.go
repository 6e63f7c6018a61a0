// Package dates maps order placement times to despatch and delivery
// dates under the fulfillment partner's cut-off windows.
//
// The business despatches on Tuesday, Wednesday and Thursday only, and
// a rolling daily cut-off decides which despatch day an order rolls
// into:
//
//	placed Wed 16:00 → Mon 15:59  despatches Tuesday
//	placed Mon 16:00 → Tue 15:59  despatches Wednesday
//	placed Tue 16:00 → Wed 15:59  despatches Thursday
//
// Delivery is always the day after despatch. Bank holidays are not
// handled.
package dates

import (
	"time"

	"go.uber.org/zap"
)

// BusinessTimeZone is where the warehouse operates. Placement times
// are converted here before any cut-off comparison.
const BusinessTimeZone = "Europe/London"

// Window is the despatch/delivery pair computed for one order, plus
// the display strings the CSV files carry.
type Window struct {
	DespatchDate  time.Time
	DeliveryDate  time.Time
	DeliveryLabel string // DD/MM/YYYY, order file column L
	PackingLabel  string // "Packing DD.MM.YY", packing file columns C and D
}

// despatchTable maps (placement weekday, at-or-after cut-off) to the
// despatch weekday. Targets always resolve to the next strictly-future
// occurrence, so the Wednesday-after-cut-off cell lands on the
// following week's Tuesday without an explicit week offset.
var despatchTable = map[time.Weekday][2]time.Weekday{
	time.Monday:    {time.Tuesday, time.Wednesday},
	time.Tuesday:   {time.Wednesday, time.Thursday},
	time.Wednesday: {time.Thursday, time.Tuesday},
	time.Thursday:  {time.Tuesday, time.Tuesday},
	time.Friday:    {time.Tuesday, time.Tuesday},
	time.Saturday:  {time.Tuesday, time.Tuesday},
	time.Sunday:    {time.Tuesday, time.Tuesday},
}

type Calculator struct {
	logger       *zap.Logger
	location     *time.Location
	cutoffHour   int
	cutoffMinute int
}

func NewCalculator(logger *zap.Logger, cutoffHour, cutoffMinute int) (*Calculator, error) {
	loc, err := time.LoadLocation(BusinessTimeZone)
	if err != nil {
		return nil, err
	}
	return &Calculator{
		logger:       logger,
		location:     loc,
		cutoffHour:   cutoffHour,
		cutoffMinute: cutoffMinute,
	}, nil
}

// Compute returns the delivery window for an order placed at the given
// time. A zero placement time falls back to the current moment; that
// should never happen for a real order, so it is logged.
func (c *Calculator) Compute(placedAt time.Time) Window {
	if placedAt.IsZero() {
		c.logger.Warn("Order has no placement time, falling back to now")
		placedAt = time.Now()
	}

	local := placedAt.In(c.location)
	despatch := c.despatchDate(local)
	delivery := despatch.AddDate(0, 0, 1)

	return Window{
		DespatchDate:  despatch,
		DeliveryDate:  delivery,
		DeliveryLabel: delivery.Format("02/01/2006"),
		PackingLabel:  "Packing " + despatch.Format("02.01.06"),
	}
}

func (c *Calculator) despatchDate(local time.Time) time.Time {
	// Exact equality of hour and minute counts as at/after cut-off.
	atOrAfter := local.Hour() > c.cutoffHour ||
		(local.Hour() == c.cutoffHour && local.Minute() >= c.cutoffMinute)

	targets := despatchTable[local.Weekday()]
	target := targets[0]
	if atOrAfter {
		target = targets[1]
	}

	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.location)
	return nextWeekday(day, target)
}

// nextWeekday returns the nearest occurrence of target strictly after
// from. If from already falls on the target weekday it advances a full
// week: despatch is never same-day.
func nextWeekday(from time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}
