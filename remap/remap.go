// Package remap stamps the daily profiles of a source corpus onto the
// calendar of a future year, matching each target day to a calendar-similar
// source day.
package remap

import (
	"fmt"
	"time"

	"github.com/stromwerk/loadshaper/calendar"
	"github.com/stromwerk/loadshaper/corpus"
)

// Catalog is the calendar view the remapper classifies target dates with.
// Implemented by calendar.Catalog.
type Catalog interface {
	Categorize(day time.Time, year int) (calendar.DayCategory, calendar.Label)
}

// MappedDay is the remap result of one target date: the chosen source
// profile, a provenance string naming category, display label and source
// date, and whether a fallback rule made the selection.
type MappedDay struct {
	Date       time.Time
	Category   calendar.DayCategory
	Label      calendar.Label
	Source     *corpus.DailyProfile
	Provenance string
	Fallback   bool
}

// Record is one output interval of a mapped year.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	Load       float64   `json:"load"`
	Category   string    `json:"category"`
	Label      string    `json:"label"`
	Provenance string    `json:"provenance"`
	Fallback   bool      `json:"fallback"`
}

// Result holds the mapped days of one target year. Target dates for which
// no source day could be selected appear in Gaps and contribute no records;
// a gap is an explicit hole in the output, never a synthesized zero day.
type Result struct {
	Year int
	Days []MappedDay
	Gaps []time.Time
}

// Records flattens the mapped days into the ordered output interval stream.
func (r *Result) Records() []Record {
	out := make([]Record, 0, len(r.Days)*corpus.IntervalsPerDay)
	for i := range r.Days {
		day := &r.Days[i]
		for j := 0; j < corpus.IntervalsPerDay; j++ {
			ts := day.Date.Add(time.Duration(j*corpus.IntervalMinutes) * time.Minute)
			out = append(out, Record{
				Timestamp:  ts,
				Load:       day.Source.Loads[j%len(day.Source.Loads)],
				Category:   day.Category.String(),
				Label:      day.Label.Display,
				Provenance: day.Provenance,
				Fallback:   day.Fallback,
			})
		}
	}
	return out
}

// FallbackFraction returns the share of mapped days selected by a fallback
// rule.
func (r *Result) FallbackFraction() float64 {
	if len(r.Days) == 0 {
		return 0
	}
	var n int
	for i := range r.Days {
		if r.Days[i].Fallback {
			n++
		}
	}
	return float64(n) / float64(len(r.Days))
}

// Complete reports whether every date of the target year was mapped.
func (r *Result) Complete() bool {
	return len(r.Gaps) == 0
}

// Remapper maps the days of a source corpus onto target years. The corpus
// and catalog are read-only inputs; remapping the same year twice yields
// identical results.
type Remapper struct {
	catalog Catalog
	corpus  *corpus.SourceCorpus
}

func New(catalog Catalog, c *corpus.SourceCorpus) *Remapper {
	return &Remapper{
		catalog: catalog,
		corpus:  c,
	}
}

// Remap walks every date of the target year in ascending order, classifies
// it and selects a source day under the category's matching policy. No
// branch errors: a day either maps, maps via a flagged fallback, or becomes
// a gap.
func (r *Remapper) Remap(year int) *Result {
	res := &Result{Year: year}

	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	for day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); !day.After(end); day = day.AddDate(0, 0, 1) {
		category, label := r.catalog.Categorize(day, year)

		var (
			src      *corpus.DailyProfile
			fallback bool
		)
		switch category {
		case calendar.PublicHoliday:
			src, fallback = r.selectPublicHoliday(label)
		case calendar.SchoolHoliday:
			src, fallback = r.selectSchoolHoliday(day, label)
		case calendar.Weekend:
			src, fallback = r.selectWeekend(day)
		default:
			src = r.selectNormal(day)
		}

		if src == nil {
			res.Gaps = append(res.Gaps, day)
			continue
		}

		res.Days = append(res.Days, MappedDay{
			Date:       day,
			Category:   category,
			Label:      label,
			Source:     src,
			Provenance: provenance(category, src, fallback),
			Fallback:   fallback,
		})
	}
	return res
}

// selectPublicHoliday prefers the source day with the exact display label
// and otherwise falls back to the chronologically first public holiday in
// the corpus.
func (r *Remapper) selectPublicHoliday(label calendar.Label) (*corpus.DailyProfile, bool) {
	bucket := r.corpus.PublicHolidays
	for i := range bucket {
		if bucket[i].Label.Display == label.Display {
			return &bucket[i], false
		}
	}
	if len(bucket) > 0 {
		return &bucket[0], true
	}
	return nil, false
}

// selectSchoolHoliday matches by type key so a holiday period found in a
// different year still matches, then picks the bucket element at the
// target's offset within its own holiday block. Consecutive target days of
// one block thereby draw from consecutive source days, cycling when the
// target block is longer than the source block.
func (r *Remapper) selectSchoolHoliday(day time.Time, label calendar.Label) (*corpus.DailyProfile, bool) {
	bucket := r.corpus.SchoolHolidays

	var matched []*corpus.DailyProfile
	for i := range bucket {
		if bucket[i].Label.TypeKey == label.TypeKey {
			matched = append(matched, &bucket[i])
		}
	}

	if len(matched) > 0 {
		offset := r.blockOffset(day, label)
		return matched[offset%len(matched)], false
	}

	if len(bucket) > 0 {
		return &bucket[day.YearDay()%len(bucket)], true
	}
	return nil, false
}

// blockOffset returns the position of a day inside its contiguous holiday
// block, scanning backward while the previous date keeps the same category
// and type key. The scan classifies each date against its own year so a
// block crossing New Year is still walked correctly.
func (r *Remapper) blockOffset(day time.Time, label calendar.Label) int {
	offset := 0
	for {
		prev := day.AddDate(0, 0, -1)
		category, prevLabel := r.catalog.Categorize(prev, prev.Year())
		if category != calendar.SchoolHoliday || prevLabel.TypeKey != label.TypeKey {
			return offset
		}
		offset++
		day = prev
	}
}

// selectWeekend prefers the first source weekend day recorded under the
// target's ISO week and otherwise cycles through all weekend days by ISO
// week number.
func (r *Remapper) selectWeekend(day time.Time) (*corpus.DailyProfile, bool) {
	bucket := r.corpus.Weekends
	_, week := day.ISOWeek()

	want := fmt.Sprintf("KW%d", week)
	for i := range bucket {
		if bucket[i].Label.Display == want {
			return &bucket[i], false
		}
	}
	if len(bucket) > 0 {
		return &bucket[week%len(bucket)], true
	}
	return nil, false
}

// selectNormal picks the same-weekday source day with the numerically
// closest day-of-year, ties broken by the earliest source date. Without a
// same-weekday source day the target stays unmapped; there is no defined
// fallback for this case.
func (r *Remapper) selectNormal(day time.Time) *corpus.DailyProfile {
	bucket := r.corpus.Normals
	targetDoy := day.YearDay()
	targetDow := day.Weekday()

	var best *corpus.DailyProfile
	bestDiff := 0
	for i := range bucket {
		if bucket[i].Date.Weekday() != targetDow {
			continue
		}
		diff := bucket[i].Date.YearDay() - targetDoy
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best = &bucket[i]
			bestDiff = diff
		}
	}
	return best
}

func provenance(category calendar.DayCategory, src *corpus.DailyProfile, fallback bool) string {
	date := src.Date.Format("2006-01-02")

	var text string
	switch category {
	case calendar.PublicHoliday:
		text = fmt.Sprintf("Holiday: %s from %s", src.Label.Display, date)
	case calendar.SchoolHoliday:
		text = fmt.Sprintf("School holiday: %s from %s", src.Label.Display, date)
	case calendar.Weekend:
		text = fmt.Sprintf("Weekend %s from %s", src.Label.Display, date)
	default:
		text = fmt.Sprintf("Normal day from %s", date)
	}
	if fallback {
		text += " (fallback)"
	}
	return text
}
