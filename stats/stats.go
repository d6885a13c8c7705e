// Package stats computes aggregate statistics and validation metrics over
// load series.
package stats

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoData = errors.New("no load values")

// IntervalHours converts a 15 minute interval load to energy.
const IntervalHours = 0.25

// DefaultAnomalyThreshold flags samples more than three standard
// deviations from the mean.
const DefaultAnomalyThreshold = 3.0

// LoadDurationPercentiles are the percentiles reported for load duration
// curve comparisons.
var LoadDurationPercentiles = []float64{0.10, 0.25, 0.50, 0.75, 0.90}

// Summary describes the shape of a load series.
type Summary struct {
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	Std            float64 `json:"std"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	PeakToAverage  float64 `json:"peak_to_average"`
	LoadFactor     float64 `json:"load_factor"`
	TotalEnergyKWh float64 `json:"total_energy_kwh"`
	CV             float64 `json:"cv"`
}

// Summarize computes the summary statistics of a load series.
func Summarize(y []float64) (Summary, error) {
	if len(y) == 0 {
		return Summary{}, ErrNoData
	}

	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)

	mean := stat.Mean(y, nil)
	std := stat.StdDev(y, nil)
	if len(y) < 2 {
		std = 0
	}
	min := sorted[0]
	max := sorted[len(sorted)-1]

	s := Summary{
		Mean:           mean,
		Median:         stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Std:            std,
		Min:            min,
		Max:            max,
		TotalEnergyKWh: floats.Sum(y) * IntervalHours,
	}
	if mean != 0 {
		s.PeakToAverage = max / mean
		s.CV = std / mean * 100
	}
	if max != 0 {
		s.LoadFactor = mean / max
	}
	return s, nil
}

// Anomaly is a sample whose z-score exceeds the detection threshold.
type Anomaly struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Load      float64   `json:"load"`
	ZScore    float64   `json:"z_score"`
}

// DetectAnomalies marks every sample with |z| above the threshold. A zero
// or negative threshold uses DefaultAnomalyThreshold. A constant series has
// no anomalies.
func DetectAnomalies(t []time.Time, y []float64, threshold float64) []Anomaly {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}
	if len(y) < 2 {
		return nil
	}

	mean := stat.Mean(y, nil)
	std := stat.StdDev(y, nil)
	if std == 0 {
		return nil
	}

	var out []Anomaly
	for i, v := range y {
		z := math.Abs((v - mean) / std)
		if z <= threshold {
			continue
		}
		a := Anomaly{
			Index:  i,
			Load:   v,
			ZScore: z,
		}
		if i < len(t) {
			a.Timestamp = t[i]
		}
		out = append(out, a)
	}
	return out
}

// SeasonStats describes the load level of one meteorological season.
type SeasonStats struct {
	Mean   float64 `json:"mean"`
	Peak   float64 `json:"peak"`
	Valley float64 `json:"valley"`
	Std    float64 `json:"std"`
}

// SeasonOf maps a month to its meteorological season: Dec-Feb Winter,
// Mar-May Spring, Jun-Aug Summer, Sep-Nov Fall.
func SeasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Fall"
	}
}

// SeasonalPatterns groups the series by season and summarizes each one.
// Seasons without samples are omitted from the result.
func SeasonalPatterns(t []time.Time, y []float64) map[string]SeasonStats {
	buckets := make(map[string][]float64, 4)
	for i, ts := range t {
		if i >= len(y) {
			break
		}
		season := SeasonOf(ts.Month())
		buckets[season] = append(buckets[season], y[i])
	}

	out := make(map[string]SeasonStats, len(buckets))
	for season, vals := range buckets {
		std := stat.StdDev(vals, nil)
		if len(vals) < 2 {
			std = 0
		}
		out[season] = SeasonStats{
			Mean:   stat.Mean(vals, nil),
			Peak:   floats.Max(vals),
			Valley: floats.Min(vals),
			Std:    std,
		}
	}
	return out
}

// HourlyPattern is the average daily shape of a series: per-hour mean and
// standard deviation over all days, plus separate weekday and weekend
// hourly means. Each slice has 24 entries; hours without samples stay zero.
type HourlyPattern struct {
	Mean    []float64 `json:"mean"`
	Std     []float64 `json:"std"`
	Weekday []float64 `json:"weekday"`
	Weekend []float64 `json:"weekend"`
}

// DailyPatterns folds the series onto the 24 hours of the day.
func DailyPatterns(t []time.Time, y []float64) HourlyPattern {
	all := make([][]float64, 24)
	weekday := make([][]float64, 24)
	weekend := make([][]float64, 24)

	for i, ts := range t {
		if i >= len(y) {
			break
		}
		h := ts.Hour()
		all[h] = append(all[h], y[i])
		switch ts.Weekday() {
		case time.Saturday, time.Sunday:
			weekend[h] = append(weekend[h], y[i])
		default:
			weekday[h] = append(weekday[h], y[i])
		}
	}

	p := HourlyPattern{
		Mean:    make([]float64, 24),
		Std:     make([]float64, 24),
		Weekday: make([]float64, 24),
		Weekend: make([]float64, 24),
	}
	for h := 0; h < 24; h++ {
		if len(all[h]) > 0 {
			p.Mean[h] = stat.Mean(all[h], nil)
		}
		if len(all[h]) > 1 {
			p.Std[h] = stat.StdDev(all[h], nil)
		}
		if len(weekday[h]) > 0 {
			p.Weekday[h] = stat.Mean(weekday[h], nil)
		}
		if len(weekend[h]) > 0 {
			p.Weekend[h] = stat.Mean(weekend[h], nil)
		}
	}
	return p
}

// MetricDelta is the absolute and relative difference of one summary metric
// between a source and a simulated series.
type MetricDelta struct {
	Absolute float64 `json:"absolute"`
	Relative float64 `json:"relative"`
}

// Comparison relates a simulated profile back to its source.
type Comparison struct {
	Source    Summary                `json:"source"`
	Simulated Summary                `json:"simulated"`
	Deltas    map[string]MetricDelta `json:"deltas"`

	// Correlation is the Pearson correlation of the two series; nil when
	// the lengths differ and no pointwise correlation is defined.
	Correlation *float64 `json:"correlation,omitempty"`

	SourcePercentiles    []float64 `json:"source_percentiles"`
	SimulatedPercentiles []float64 `json:"simulated_percentiles"`
}

// Compare summarizes both series, reports per-metric deltas and the
// load-duration-curve percentiles of each.
func Compare(source, simulated []float64) (Comparison, error) {
	srcSummary, err := Summarize(source)
	if err != nil {
		return Comparison{}, err
	}
	simSummary, err := Summarize(simulated)
	if err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{
		Source:    srcSummary,
		Simulated: simSummary,
		Deltas: map[string]MetricDelta{
			"mean":             delta(srcSummary.Mean, simSummary.Mean),
			"median":           delta(srcSummary.Median, simSummary.Median),
			"std":              delta(srcSummary.Std, simSummary.Std),
			"min":              delta(srcSummary.Min, simSummary.Min),
			"max":              delta(srcSummary.Max, simSummary.Max),
			"peak_to_average":  delta(srcSummary.PeakToAverage, simSummary.PeakToAverage),
			"load_factor":      delta(srcSummary.LoadFactor, simSummary.LoadFactor),
			"total_energy_kwh": delta(srcSummary.TotalEnergyKWh, simSummary.TotalEnergyKWh),
			"cv":               delta(srcSummary.CV, simSummary.CV),
		},
		SourcePercentiles:    durationPercentiles(source),
		SimulatedPercentiles: durationPercentiles(simulated),
	}

	if len(source) == len(simulated) {
		corr := stat.Correlation(source, simulated, nil)
		cmp.Correlation = &corr
	}
	return cmp, nil
}

func delta(src, sim float64) MetricDelta {
	d := MetricDelta{Absolute: sim - src}
	if src != 0 {
		d.Relative = (sim - src) / src * 100
	}
	return d
}

func durationPercentiles(y []float64) []float64 {
	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)

	out := make([]float64, 0, len(LoadDurationPercentiles))
	for _, p := range LoadDurationPercentiles {
		out = append(out, stat.Quantile(p, stat.Empirical, sorted, nil))
	}
	return out
}
