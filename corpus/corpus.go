// Package corpus splits a measured load series into whole-day profiles and
// groups them by calendar category for the remapping engine.
package corpus

import (
	"time"

	"github.com/stromwerk/loadshaper/calendar"
	"github.com/stromwerk/loadshaper/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// IntervalsPerDay is the number of metering intervals in one complete
	// day at the fixed 15 minute spacing.
	IntervalsPerDay = 96
	IntervalMinutes = 15
)

// DailyProfile is one complete calendar day of a source series: its date,
// category, label and exactly IntervalsPerDay load samples starting at
// 00:00. Incomplete days never become profiles; they are dropped while
// building the corpus.
type DailyProfile struct {
	Date     time.Time
	Category calendar.DayCategory
	Label    calendar.Label
	Loads    []float64
}

// Mean returns the average load of the day.
func (p *DailyProfile) Mean() float64 {
	return stat.Mean(p.Loads, nil)
}

// Total returns the summed load of the day.
func (p *DailyProfile) Total() float64 {
	return floats.Sum(p.Loads)
}

// Classifier categorizes a date against the calendar of a year. Implemented
// by calendar.Catalog.
type Classifier interface {
	Categorize(day time.Time, year int) (calendar.DayCategory, calendar.Label)
}

// SourceCorpus owns one ordered collection of complete source days per
// category. The four buckets are an exhaustive partition over DayCategory
// and each preserves the chronological order of the source series. A corpus
// is built once per source profile and read-only afterwards.
type SourceCorpus struct {
	PublicHolidays []DailyProfile
	SchoolHolidays []DailyProfile
	Weekends       []DailyProfile
	Normals        []DailyProfile
}

// Bucket returns the collection of a category.
func (c *SourceCorpus) Bucket(cat calendar.DayCategory) []DailyProfile {
	switch cat {
	case calendar.PublicHoliday:
		return c.PublicHolidays
	case calendar.SchoolHoliday:
		return c.SchoolHolidays
	case calendar.Weekend:
		return c.Weekends
	default:
		return c.Normals
	}
}

// TotalDays returns the number of complete days across all buckets.
func (c *SourceCorpus) TotalDays() int {
	return len(c.PublicHolidays) + len(c.SchoolHolidays) + len(c.Weekends) + len(c.Normals)
}

// Build splits the series into calendar-day groups, keeps only groups with
// exactly IntervalsPerDay samples on the 15 minute grid starting at
// midnight, classifies each kept day against its own calendar year and
// buckets it by category. Days are classified with the year they occurred
// in, not any target year; a 2024 source day is checked against the 2024
// holiday calendar.
func Build(ds *timedataset.TimeDataset, classifier Classifier) *SourceCorpus {
	out := &SourceCorpus{}
	if ds == nil || len(ds.T) == 0 {
		return out
	}

	start := 0
	day := dateOf(ds.T[0])
	for i := 1; i <= len(ds.T); i++ {
		if i < len(ds.T) && dateOf(ds.T[i]).Equal(day) {
			continue
		}
		if i-start == IntervalsPerDay && onMeterGrid(ds.T[start:i]) {
			out.add(day, ds.Y[start:i], classifier)
		}
		if i < len(ds.T) {
			start = i
			day = dateOf(ds.T[i])
		}
	}
	return out
}

// onMeterGrid reports whether a day's timestamps form the fixed 15 minute
// grid starting at midnight. A drifting or shifted day cannot be stamped
// onto target timestamps and is dropped like an incomplete one.
func onMeterGrid(t timedataset.TimeSlice) bool {
	freq, err := t.EstimateFreq()
	if err != nil || freq != IntervalMinutes*time.Minute {
		return false
	}

	begin := t.StartTime()
	h, m, s := begin.Clock()
	if h != 0 || m != 0 || s != 0 || begin.Nanosecond() != 0 {
		return false
	}

	for i, ts := range t {
		if !ts.Equal(begin.Add(time.Duration(i) * freq)) {
			return false
		}
	}
	return true
}

func (c *SourceCorpus) add(day time.Time, loads []float64, classifier Classifier) {
	category, label := classifier.Categorize(day, day.Year())

	profile := DailyProfile{
		Date:     day,
		Category: category,
		Label:    label,
		Loads:    append([]float64(nil), loads...),
	}

	switch category {
	case calendar.PublicHoliday:
		c.PublicHolidays = append(c.PublicHolidays, profile)
	case calendar.SchoolHoliday:
		c.SchoolHolidays = append(c.SchoolHolidays, profile)
	case calendar.Weekend:
		c.Weekends = append(c.Weekends, profile)
	default:
		c.Normals = append(c.Normals, profile)
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
