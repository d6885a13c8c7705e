package loadshaper

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stromwerk/loadshaper/calendar"
	"github.com/stromwerk/loadshaper/remap"
	"github.com/stromwerk/loadshaper/timedataset"
)

// LineTSeries generates an echart multi-line chart for some arbitrary
// time/value combination. Each series in y must have the same length as the
// input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}

	return line
}

// LineMappedYear charts the full quarter-hour series of a mapped year.
func LineMappedYear(res *remap.Result) *charts.Line {
	records := res.Records()

	t := make([]time.Time, 0, len(records))
	y := make([]float64, 0, len(records))
	for _, rec := range records {
		t = append(t, rec.Timestamp)
		y = append(y, rec.Load)
	}

	return LineTSeries(
		fmt.Sprintf("Simulated load %d", res.Year),
		[]string{fmt.Sprintf("%d", res.Year)},
		t, [][]float64{y},
	)
}

// LineDailyAverages charts the per-day average load of a mapped year with
// one series per day category, letting holiday and weekend shapes stand out
// against ordinary weekdays.
func LineDailyAverages(res *remap.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: fmt.Sprintf("Daily average load %d", res.Year),
			},
		),
	)

	categories := []calendar.DayCategory{
		calendar.PublicHoliday,
		calendar.SchoolHoliday,
		calendar.Weekend,
		calendar.Normal,
	}

	t := make([]time.Time, 0, len(res.Days))
	byCategory := make(map[calendar.DayCategory][]opts.LineData, len(categories))

	for i := range res.Days {
		day := &res.Days[i]
		t = append(t, day.Date)
		for _, cat := range categories {
			val := opts.LineData{}
			if cat == day.Category {
				val = opts.LineData{Value: day.Source.Mean()}
			}
			byCategory[cat] = append(byCategory[cat], val)
		}
	}

	line = line.SetXAxis(t)
	for _, cat := range categories {
		line = line.AddSeries(cat.String(), byCategory[cat])
	}
	return line
}

// LineDailyOverlay charts the per-day average of the source series against
// that of a mapped year, aligned by day of year.
func LineDailyOverlay(source *timedataset.TimeDataset, res *remap.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: fmt.Sprintf("Source vs simulated daily average %d", res.Year),
			},
		),
	)

	records := res.Records()
	simT := make([]time.Time, 0, len(records))
	simY := make([]float64, 0, len(records))
	for _, rec := range records {
		simT = append(simT, rec.Timestamp)
		simY = append(simY, rec.Load)
	}

	days := make([]int, 0, 366)
	for d := 1; d <= 366; d++ {
		days = append(days, d)
	}

	line = line.SetXAxis(days)
	line = line.AddSeries("source", dailyMeans(source.T, source.Y))
	line = line.AddSeries(fmt.Sprintf("%d", res.Year), dailyMeans(simT, simY))
	return line
}

// dailyMeans averages samples per day of year; days without samples stay
// empty so echarts leaves a gap instead of drawing zero.
func dailyMeans(t []time.Time, y []float64) []opts.LineData {
	sums := make([]float64, 367)
	counts := make([]int, 367)
	for i, ts := range t {
		d := ts.YearDay()
		sums[d] += y[i]
		counts[d]++
	}

	out := make([]opts.LineData, 0, 366)
	for d := 1; d <= 366; d++ {
		if counts[d] == 0 {
			out = append(out, opts.LineData{})
			continue
		}
		out = append(out, opts.LineData{Value: sums[d] / float64(counts[d])})
	}
	return out
}

// ReportPage assembles the charts of one or more simulated years into a
// single renderable HTML page, years in ascending order.
func ReportPage(results map[int]*remap.Result) *components.Page {
	page := components.NewPage()

	years := make([]int, 0, len(results))
	for year := range results {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		res := results[year]
		page.AddCharts(
			LineDailyAverages(res),
			LineMappedYear(res),
		)
	}
	return page
}
