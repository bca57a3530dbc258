package quota

import (
	"fmt"
	"time"
)

// DefaultZone is the operational timezone. Every "today" comparison in the
// engine (planning validation, alerts, calendar) goes through the same zone
// to avoid off-by-one errors at day boundaries.
const DefaultZone = "America/Guayaquil"

// Clock resolves "now" in the operational timezone. The time source is
// injectable so tests can pin it.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock builds a clock for the named zone ("" falls back to DefaultZone).
func NewClock(zone string) (*Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load operational timezone %q: %w", zone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixedClock returns a clock frozen at the given instant, for tests.
func NewFixedClock(at time.Time, zone string) *Clock {
	c, err := NewClock(zone)
	if err != nil {
		panic(err)
	}
	c.now = func() time.Time { return at }
	return c
}

func (c *Clock) Now() time.Time           { return c.now().In(c.loc) }
func (c *Clock) Location() *time.Location { return c.loc }

// Today is the single source of truth for the current operational day.
func (c *Clock) Today() Date    { return DateOf(c.now(), c.loc) }
func (c *Clock) Tomorrow() Date { return c.Today().AddDays(1) }
