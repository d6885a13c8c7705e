package loadshaper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stromwerk/loadshaper/corpus"
	"github.com/stromwerk/loadshaper/remap"
	"github.com/stromwerk/loadshaper/timedataset"
)

// generateYearSeries builds a complete metered year: 96 quarter-hour
// samples per day with a weekday-dependent base load and a mild seasonal
// drift, enough structure for every bucket to differ.
func generateYearSeries(year int) *timedataset.TimeDataset {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)

	var t []time.Time
	var y []float64
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		base := 1000.0 + float64(day.Weekday())*50 + float64(day.YearDay())
		for i := 0; i < corpus.IntervalsPerDay; i++ {
			t = append(t, day.Add(time.Duration(i*corpus.IntervalMinutes)*time.Minute))
			y = append(y, base+float64(i))
		}
	}

	ds, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		panic(err)
	}
	return ds
}

func newOfflineSimulator(t *testing.T) *Simulator {
	t.Helper()
	sim, err := New(&Options{Region: "NI", DisableFetch: true})
	require.Nil(t, err)
	return sim
}

func TestNewValidatesRegion(t *testing.T) {
	_, err := New(&Options{Region: "XX", DisableFetch: true})
	assert.ErrorIs(t, err, ErrUnknownRegion)

	sim, err := New(nil)
	require.Nil(t, err)
	assert.Equal(t, NewDefaultOptions().Region, sim.Region())
}

func TestSimulateWithoutProfile(t *testing.T) {
	sim := newOfflineSimulator(t)
	_, err := sim.Simulate(2026)
	assert.ErrorIs(t, err, ErrNoSourceProfile)
}

func TestLoadSeriesRejectsEmptyAndIncomplete(t *testing.T) {
	sim := newOfflineSimulator(t)

	assert.ErrorIs(t, sim.LoadSeries(nil), timedataset.ErrNoSamples)

	// a series of only partial days has no usable corpus
	var tt []time.Time
	var yy []float64
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		tt = append(tt, day.Add(time.Duration(i*corpus.IntervalMinutes)*time.Minute))
		yy = append(yy, 100)
	}
	ds, err := timedataset.NewUnivariateDataset(tt, yy)
	require.Nil(t, err)
	assert.ErrorIs(t, sim.LoadSeries(ds), ErrNoCompleteDays)
}

func TestSimulateFullYear(t *testing.T) {
	sim := newOfflineSimulator(t)
	require.Nil(t, sim.LoadSeries(generateYearSeries(2024)))

	assert.Equal(t, 2024, sim.SourceYear())

	c := sim.Corpus()
	assert.Equal(t, 366, c.TotalDays())
	assert.NotEmpty(t, c.PublicHolidays)
	assert.NotEmpty(t, c.SchoolHolidays)
	assert.NotEmpty(t, c.Weekends)
	assert.NotEmpty(t, c.Normals)

	res, err := sim.Simulate(2026)
	require.Nil(t, err)

	assert.Equal(t, 2026, res.Year)
	assert.True(t, res.Complete(), "a full source year must map every target day, gaps: %v", res.Gaps)
	assert.Len(t, res.Records(), 365*corpus.IntervalsPerDay)

	// the built-in calendar names May Day identically in both years, so the
	// target holiday draws from the source holiday without fallback
	mayDay := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var found bool
	for i := range res.Days {
		if !res.Days[i].Date.Equal(mayDay) {
			continue
		}
		found = true
		assert.False(t, res.Days[i].Fallback)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), res.Days[i].Source.Date)
	}
	assert.True(t, found)
}

func TestSimulateDeterministic(t *testing.T) {
	sim := newOfflineSimulator(t)
	require.Nil(t, sim.LoadSeries(generateYearSeries(2024)))

	first, err := sim.Simulate(2026)
	require.Nil(t, err)
	second, err := sim.Simulate(2026)
	require.Nil(t, err)

	firstRecords := first.Records()
	secondRecords := second.Records()
	require.Equal(t, len(firstRecords), len(secondRecords))
	for i := range firstRecords {
		require.Equal(t, firstRecords[i], secondRecords[i], "record %d differs between runs", i)
	}
}

func TestSimulateAll(t *testing.T) {
	sim := newOfflineSimulator(t)
	require.Nil(t, sim.LoadSeries(generateYearSeries(2024)))

	results, err := sim.SimulateAll([]int{2026, 2027})
	require.Nil(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2026, results[2026].Year)
	assert.Equal(t, 2027, results[2027].Year)
}

func TestReportPage(t *testing.T) {
	sim := newOfflineSimulator(t)
	require.Nil(t, sim.LoadSeries(generateYearSeries(2024)))

	res, err := sim.Simulate(2026)
	require.Nil(t, err)

	page := ReportPage(map[int]*remap.Result{2026: res})
	assert.NotNil(t, page)

	line := LineDailyAverages(res)
	assert.NotNil(t, line)

	overlay := LineDailyOverlay(sim.Source(), res)
	assert.NotNil(t, overlay)
}
