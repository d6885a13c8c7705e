package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	public map[string]time.Time
	school []Interval
	err    error

	publicCalls int
	schoolCalls int
}

func (f *fakeSource) PublicHolidays(_ context.Context, year int, region Region) (map[string]time.Time, error) {
	f.publicCalls++
	return f.public, f.err
}

func (f *fakeSource) SchoolHolidays(_ context.Context, year int, region Region) ([]Interval, error) {
	f.schoolCalls++
	return f.school, f.err
}

func TestCategorizePrecedence(t *testing.T) {
	c := NewCatalog("BW", nil)

	testData := map[string]struct {
		day      time.Time
		category DayCategory
		display  string
	}{
		// Easter Monday 2024 falls inside the Easter school-holiday window
		// and on no weekend; public holiday wins over school holiday
		"public holiday beats school holiday": {
			day:      time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			category: PublicHoliday,
			display:  "Ostermontag",
		},
		// Easter Sunday is a Sunday; public holiday wins over weekend
		"public holiday beats weekend": {
			day:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			category: PublicHoliday,
			display:  "Ostersonntag",
		},
		// a Saturday inside the Easter window classifies as school holiday
		"school holiday beats weekend": {
			day:      time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC),
			category: SchoolHoliday,
			display:  "osterferien baden-württemberg 2024",
		},
		"plain saturday": {
			day:      time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC),
			category: Weekend,
			display:  "KW2",
		},
		"plain weekday": {
			day:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			category: Normal,
			display:  "Normal day",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			category, label := c.Categorize(td.day, 2024)
			assert.Equal(t, td.category, category)
			assert.Equal(t, td.display, label.Display)
		})
	}
}

func TestCategorizeTotalAndDeterministic(t *testing.T) {
	c := NewCatalog("NI", nil)

	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !day.After(end); day = day.AddDate(0, 0, 1) {
		cat1, label1 := c.Categorize(day, 2024)
		cat2, label2 := c.Categorize(day, 2024)

		assert.GreaterOrEqual(t, int(cat1), int(PublicHoliday))
		assert.LessOrEqual(t, int(cat1), int(Normal))
		assert.Equal(t, cat1, cat2, "category must be deterministic on %s", day)
		assert.Equal(t, label1, label2, "label must be deterministic on %s", day)
		assert.NotEmpty(t, label1.TypeKey)
	}
}

func TestCatalogCachePopulateOnce(t *testing.T) {
	src := &fakeSource{
		public: map[string]time.Time{
			"Neujahr": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		school: []Interval{
			{
				Start: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
				Label: NewLabel("sommerferien niedersachsen 2026", "NI"),
			},
		},
	}
	c := NewCatalog("NI", src)

	for i := 0; i < 3; i++ {
		require.Len(t, c.PublicHolidays(2026), 1)
		require.Len(t, c.SchoolHolidays(2026), 1)
		c.Categorize(time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC), 2026)
	}

	assert.Equal(t, 1, src.publicCalls)
	assert.Equal(t, 1, src.schoolCalls)

	// a new year resolves separately
	c.PublicHolidays(2027)
	assert.Equal(t, 2, src.publicCalls)
}

func TestCatalogAbsorbsSourceFailure(t *testing.T) {
	testData := map[string]*fakeSource{
		"transport error": {err: errors.New("connection refused")},
		"empty payload":   {},
	}

	for name, src := range testData {
		t.Run(name, func(t *testing.T) {
			c := NewCatalog("BY", src)

			holidays := c.PublicHolidays(2025)
			assert.Len(t, holidays, 10, "fallback must supply the built-in holidays")

			intervals := c.SchoolHolidays(2025)
			assert.Len(t, intervals, 7)

			weekends := c.Weekends(2025)
			assert.NotEmpty(t, weekends)
		})
	}
}

func TestCatalogUsesSourceData(t *testing.T) {
	day := time.Date(2026, 6, 17, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		public: map[string]time.Time{"Siebzehnter Juni": day},
	}
	c := NewCatalog("BE", src)

	category, label := c.Categorize(day, 2026)
	assert.Equal(t, PublicHoliday, category)
	assert.Equal(t, "Siebzehnter Juni", label.Display)
}
