// Package loadcsv reads and writes the semicolon-separated load profile
// format used by German metering exports: "timestamp;load" with a comma as
// decimal separator.
package loadcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stromwerk/loadshaper/remap"
	"github.com/stromwerk/loadshaper/timedataset"
)

var ErrNoRows = errors.New("no parseable rows")

// timestampLayouts lists the formats accepted on parse. Export always
// writes the first one.
var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04",
}

// Parse reads a load profile. The first row is treated as a header,
// malformed rows are skipped, samples are sorted by timestamp and duplicate
// timestamps keep the first value.
func Parse(r io.Reader) (*timedataset.TimeDataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	type sample struct {
		t time.Time
		y float64
	}
	var samples []sample

	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// a stray quote or similar only loses that row
			continue
		}
		if first {
			first = false
			if looksLikeHeader(row) {
				continue
			}
		}
		if len(row) < 2 {
			continue
		}

		ts, ok := parseTimestamp(strings.TrimSpace(row[0]))
		if !ok {
			continue
		}
		load, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[1]), ",", "."), 64)
		if err != nil {
			continue
		}
		samples = append(samples, sample{t: ts, y: load})
	}

	if len(samples) == 0 {
		return nil, ErrNoRows
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].t.Before(samples[j].t) })

	t := make([]time.Time, 0, len(samples))
	y := make([]float64, 0, len(samples))
	for _, s := range samples {
		if len(t) > 0 && s.t.Equal(t[len(t)-1]) {
			continue
		}
		t = append(t, s.t)
		y = append(y, s.y)
	}

	return timedataset.NewUnivariateDataset(t, y)
}

// Write serializes mapped records. Loads are written with two decimals and
// a comma separator; withProvenance adds the source column.
func Write(w io.Writer, records []remap.Record, withProvenance bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := []string{"timestamp", "load"}
	if withProvenance {
		header = append(header, "source")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.Timestamp.Format(timestampLayouts[0]),
			formatLoad(rec.Load),
		}
		if withProvenance {
			row = append(row, rec.Provenance)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatLoad(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, ok := parseTimestamp(strings.TrimSpace(row[0]))
	return !ok
}
