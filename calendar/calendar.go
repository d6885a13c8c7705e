package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// DayCategory partitions every calendar date into exactly one of four
// classes. Precedence when a date qualifies for more than one is
// PublicHoliday > SchoolHoliday > Weekend > Normal.
type DayCategory int

const (
	PublicHoliday DayCategory = iota
	SchoolHoliday
	Weekend
	Normal
)

func (c DayCategory) String() string {
	switch c {
	case PublicHoliday:
		return "public_holiday"
	case SchoolHoliday:
		return "school_holiday"
	case Weekend:
		return "weekend"
	case Normal:
		return "normal"
	}
	return fmt.Sprintf("day_category(%d)", int(c))
}

// Interval is a labeled school-holiday period. Start and End are inclusive
// dates at midnight UTC.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label Label     `json:"label"`
}

func (iv Interval) Contains(day time.Time) bool {
	return !day.Before(iv.Start) && !day.After(iv.End)
}

// WeekendPair is a Saturday/Sunday pair with its ISO week number.
type WeekendPair struct {
	Saturday time.Time `json:"saturday"`
	Sunday   time.Time `json:"sunday"`
	ISOWeek  int       `json:"iso_week"`
}

// HolidayCalendar holds the resolved calendar data of one (year, region).
// Instances are built once, cached, and never mutated.
type HolidayCalendar struct {
	PublicHolidays map[string]time.Time
	SchoolHolidays []Interval
	Weekends       []WeekendPair

	// publicByDay indexes the public holidays by unix day for categorize
	// lookups. When two display labels share a date the lexicographically
	// smaller one wins so categorization stays deterministic.
	publicByDay map[int64]string
}

// Source supplies external holiday data. Both methods may fail freely;
// the catalog absorbs every error into the built-in fallback calendar.
type Source interface {
	PublicHolidays(ctx context.Context, year int, region Region) (map[string]time.Time, error)
	SchoolHolidays(ctx context.Context, year int, region Region) ([]Interval, error)
}

// Catalog resolves holiday calendars for one region. Calendars are cached
// per year on first use and kept for the life of the instance; a fresh view
// of the external data requires a new Catalog. Not safe for concurrent use.
type Catalog struct {
	region Region
	source Source
	cache  map[int]*HolidayCalendar
}

// NewCatalog returns a Catalog for the region. A nil source skips external
// fetching entirely and always uses the built-in calendar.
func NewCatalog(region Region, source Source) *Catalog {
	return &Catalog{
		region: region,
		source: source,
		cache:  make(map[int]*HolidayCalendar),
	}
}

func (c *Catalog) Region() Region { return c.region }

// PublicHolidays returns the display-label to date mapping of a year.
func (c *Catalog) PublicHolidays(year int) map[string]time.Time {
	return c.calendarFor(year).PublicHolidays
}

// SchoolHolidays returns the school-holiday intervals of a year sorted by
// start date.
func (c *Catalog) SchoolHolidays(year int) []Interval {
	return c.calendarFor(year).SchoolHolidays
}

// Weekends returns every Saturday/Sunday pair of a year.
func (c *Catalog) Weekends(year int) []WeekendPair {
	return c.calendarFor(year).Weekends
}

// Categorize classifies a date against the calendar of the given year and
// returns its category together with its label. Every date maps to exactly
// one category.
func (c *Catalog) Categorize(day time.Time, year int) (DayCategory, Label) {
	day = midnight(day)
	hc := c.calendarFor(year)

	if display, ok := hc.publicByDay[day.Unix()]; ok {
		return PublicHoliday, NewLabel(display, c.region)
	}

	for _, iv := range hc.SchoolHolidays {
		if iv.Contains(day) {
			return SchoolHoliday, iv.Label
		}
	}

	if wkday := day.Weekday(); wkday == time.Saturday || wkday == time.Sunday {
		_, week := day.ISOWeek()
		return Weekend, NewLabel(fmt.Sprintf("KW%d", week), c.region)
	}

	return Normal, NewLabel("Normal day", c.region)
}

// calendarFor is the read-through cache: the first request for a year
// resolves the calendar, later requests return the stored value.
func (c *Catalog) calendarFor(year int) *HolidayCalendar {
	if hc, ok := c.cache[year]; ok {
		return hc
	}

	hc := &HolidayCalendar{
		PublicHolidays: c.resolvePublicHolidays(year),
		SchoolHolidays: c.resolveSchoolHolidays(year),
		Weekends:       weekendsOf(year),
	}

	hc.publicByDay = make(map[int64]string, len(hc.PublicHolidays))
	displays := make([]string, 0, len(hc.PublicHolidays))
	for display := range hc.PublicHolidays {
		displays = append(displays, display)
	}
	sort.Strings(displays)
	for _, display := range displays {
		key := midnight(hc.PublicHolidays[display]).Unix()
		if _, taken := hc.publicByDay[key]; !taken {
			hc.publicByDay[key] = display
		}
	}

	c.cache[year] = hc
	return hc
}

func (c *Catalog) resolvePublicHolidays(year int) map[string]time.Time {
	if c.source != nil {
		holidays, err := c.source.PublicHolidays(context.Background(), year, c.region)
		if err == nil && len(holidays) > 0 {
			return holidays
		}
		if err != nil {
			slog.Warn("public holiday source failed, using built-in calendar",
				"year", year, "region", c.region, "error", err)
		}
	}
	return fallbackPublicHolidays(year)
}

func (c *Catalog) resolveSchoolHolidays(year int) []Interval {
	if c.source != nil {
		intervals, err := c.source.SchoolHolidays(context.Background(), year, c.region)
		if err == nil && len(intervals) > 0 {
			return intervals
		}
		if err != nil {
			slog.Warn("school holiday source failed, using built-in calendar",
				"year", year, "region", c.region, "error", err)
		}
	}
	return fallbackSchoolHolidays(year, c.region)
}
