package loadcsv

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stromwerk/loadshaper/calendar"
	"github.com/stromwerk/loadshaper/corpus"
	"github.com/stromwerk/loadshaper/remap"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"timestamp;load",
		"2024-01-01 00:00;123,45",
		"2024-01-01 00:15;130,00",
		"kaputt;1,0",
		"2024-01-01 00:45;140",
		"2024-01-01 00:30;135.5",
		"2024-01-01 00:45;999,99", // duplicate timestamp keeps the first value
	}, "\n")

	ds, err := Parse(strings.NewReader(input))
	require.Nil(t, err)

	require.Len(t, ds.T, 4)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ds.T[0])
	assert.Equal(t, time.Date(2024, 1, 1, 0, 45, 0, 0, time.UTC), ds.T[3])
	assert.Equal(t, []float64{123.45, 130, 135.5, 140}, ds.Y)
}

func TestParseNoRows(t *testing.T) {
	_, err := Parse(strings.NewReader("timestamp;load\nkaputt;kaputt\n"))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestParseGermanTimestamps(t *testing.T) {
	ds, err := Parse(strings.NewReader("timestamp;load\n01.03.2024 06:00;42,5\n"))
	require.Nil(t, err)
	require.Len(t, ds.T, 1)
	assert.Equal(t, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), ds.T[0])
}

func TestWrite(t *testing.T) {
	day := corpus.DailyProfile{
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Category: calendar.PublicHoliday,
		Label:    calendar.NewLabel("Tag der Arbeit", "NI"),
		Loads:    []float64{123.456},
	}
	records := []remap.Record{
		{
			Timestamp:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			Load:       123.456,
			Category:   day.Category.String(),
			Label:      day.Label.Display,
			Provenance: "Holiday: Tag der Arbeit from 2024-05-01",
		},
	}

	var sb strings.Builder
	require.Nil(t, Write(&sb, records, true))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp;load;source", lines[0])
	assert.Equal(t, "2026-05-01 00:00;123,46;Holiday: Tag der Arbeit from 2024-05-01", lines[1])

	sb.Reset()
	require.Nil(t, Write(&sb, records, false))
	lines = strings.Split(strings.TrimSpace(sb.String()), "\n")
	assert.Equal(t, "timestamp;load", lines[0])
	assert.Equal(t, "2026-05-01 00:00;123,46", lines[1])
}

func TestParseWriteRoundtrip(t *testing.T) {
	records := []remap.Record{
		{Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Load: 100.5},
		{Timestamp: time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC), Load: 101.25},
	}

	var sb strings.Builder
	require.Nil(t, Write(&sb, records, false))

	ds, err := Parse(strings.NewReader(sb.String()))
	require.Nil(t, err)
	require.Len(t, ds.T, 2)
	assert.Equal(t, records[0].Timestamp, ds.T[0])
	assert.InDelta(t, 100.5, ds.Y[0], 1e-9)
	assert.InDelta(t, 101.25, ds.Y[1], 0.005) // two-decimal export rounds
}
