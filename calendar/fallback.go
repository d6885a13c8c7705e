package calendar

import (
	"sort"
	"time"

	"github.com/rickar/cal/v2"
)

// Built-in German public holidays used when no external source is
// reachable. Fixed-date holidays resolve via CalcDayOfMonth, movable ones
// via their offset from Easter Sunday.
var (
	neujahr = &cal.Holiday{
		Name:  "Neujahr",
		Type:  cal.ObservancePublic,
		Month: time.January,
		Day:   1,
		Func:  cal.CalcDayOfMonth,
	}
	karfreitag = &cal.Holiday{
		Name:   "Karfreitag",
		Type:   cal.ObservancePublic,
		Offset: -2,
		Func:   cal.CalcEasterOffset,
	}
	ostersonntag = &cal.Holiday{
		Name:   "Ostersonntag",
		Type:   cal.ObservancePublic,
		Offset: 0,
		Func:   cal.CalcEasterOffset,
	}
	ostermontag = &cal.Holiday{
		Name:   "Ostermontag",
		Type:   cal.ObservancePublic,
		Offset: 1,
		Func:   cal.CalcEasterOffset,
	}
	tagDerArbeit = &cal.Holiday{
		Name:  "Tag der Arbeit",
		Type:  cal.ObservancePublic,
		Month: time.May,
		Day:   1,
		Func:  cal.CalcDayOfMonth,
	}
	christiHimmelfahrt = &cal.Holiday{
		Name:   "Christi Himmelfahrt",
		Type:   cal.ObservancePublic,
		Offset: 39,
		Func:   cal.CalcEasterOffset,
	}
	pfingstmontag = &cal.Holiday{
		Name:   "Pfingstmontag",
		Type:   cal.ObservancePublic,
		Offset: 50,
		Func:   cal.CalcEasterOffset,
	}
	tagDerDeutschenEinheit = &cal.Holiday{
		Name:  "Tag der Deutschen Einheit",
		Type:  cal.ObservancePublic,
		Month: time.October,
		Day:   3,
		Func:  cal.CalcDayOfMonth,
	}
	weihnachten = &cal.Holiday{
		Name:  "Weihnachten",
		Type:  cal.ObservancePublic,
		Month: time.December,
		Day:   25,
		Func:  cal.CalcDayOfMonth,
	}
	zweiterWeihnachtstag = &cal.Holiday{
		Name:  "2. Weihnachtstag",
		Type:  cal.ObservancePublic,
		Month: time.December,
		Day:   26,
		Func:  cal.CalcDayOfMonth,
	}

	fallbackHolidays = []*cal.Holiday{
		neujahr,
		karfreitag,
		ostersonntag,
		ostermontag,
		tagDerArbeit,
		christiHimmelfahrt,
		pfingstmontag,
		tagDerDeutschenEinheit,
		weihnachten,
		zweiterWeihnachtstag,
	}
)

func fallbackPublicHolidays(year int) map[string]time.Time {
	out := make(map[string]time.Time, len(fallbackHolidays))
	for _, hol := range fallbackHolidays {
		actual, _ := hol.Calc(year)
		out[hol.Name] = midnight(actual)
	}
	return out
}

// gaussEaster computes Easter Sunday of a year with the Gauss Easter
// algorithm.
func gaussEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// fallbackSchoolHolidays approximates the typical school-holiday windows of
// a year. Winter, autumn and Christmas windows sit at fixed dates, Easter
// and Whitsun windows float with Easter, and the summer window splits the
// states into an earlier northern and a later southern group. The January
// window carries the Weihnachtsferien label so it matches the December
// window of any other year by type key.
func fallbackSchoolHolidays(year int, region Region) []Interval {
	easter := gaussEaster(year)

	mk := func(name string, start, end time.Time) Interval {
		return Interval{
			Start: start,
			End:   end,
			Label: NewLabel(normalizeDisplay(name, region, year), region),
		}
	}

	intervals := []Interval{
		mk("Weihnachtsferien", date(year, time.January, 1), date(year, time.January, 6)),
		mk("Winterferien", date(year, time.February, 10), date(year, time.February, 24)),
		mk("Osterferien", easter.AddDate(0, 0, -7), easter.AddDate(0, 0, 7)),
		mk("Pfingstferien", easter.AddDate(0, 0, 49), easter.AddDate(0, 0, 56)),
		mk("Herbstferien", date(year, time.October, 14), date(year, time.October, 25)),
		mk("Weihnachtsferien", date(year, time.December, 23), date(year, time.December, 31)),
	}

	if region.lateSummer() {
		intervals = append(intervals, mk("Sommerferien", date(year, time.July, 25), date(year, time.September, 7)))
	} else {
		intervals = append(intervals, mk("Sommerferien", date(year, time.July, 1), date(year, time.August, 15)))
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start.Before(intervals[j].Start) })
	return intervals
}

// weekendsOf lists every Saturday/Sunday pair fully inside the year along
// with its ISO week number.
func weekendsOf(year int) []WeekendPair {
	var out []WeekendPair

	day := date(year, time.January, 1)
	for day.Weekday() != time.Saturday {
		day = day.AddDate(0, 0, 1)
	}

	for day.Year() == year {
		sunday := day.AddDate(0, 0, 1)
		if sunday.Year() == year {
			_, week := day.ISOWeek()
			out = append(out, WeekendPair{
				Saturday: day,
				Sunday:   sunday,
				ISOWeek:  week,
			})
		}
		day = day.AddDate(0, 0, 7)
	}
	return out
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
