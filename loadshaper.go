// Package loadshaper remaps a measured annual load profile onto future
// calendar years. Each day of a target year is matched to a calendar-similar
// day of the source year (public holiday, school holiday, weekend or
// ordinary weekday) and receives that day's 96 quarter-hour load samples.
package loadshaper

import (
	"errors"
	"fmt"
	"time"

	"github.com/stromwerk/loadshaper/calendar"
	"github.com/stromwerk/loadshaper/corpus"
	"github.com/stromwerk/loadshaper/remap"
	"github.com/stromwerk/loadshaper/timedataset"
)

var (
	ErrUnknownRegion   = errors.New("unknown federal state code")
	ErrNoSourceProfile = errors.New("no source profile loaded")
	ErrNoCompleteDays  = errors.New("source series contains no complete days")
)

// Options configures a Simulator.
type Options struct {
	// Region is the German federal state whose holiday calendar applies.
	Region calendar.Region `json:"region"`

	// FetchTimeout bounds external holiday requests.
	FetchTimeout time.Duration `json:"fetch_timeout"`

	// DisableFetch skips the external holiday sources entirely and always
	// uses the built-in calendar.
	DisableFetch bool `json:"disable_fetch"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Region:       "BW",
		FetchTimeout: calendar.DefaultFetchTimeout,
	}
}

// Simulator binds a holiday catalog to an uploaded source profile and
// produces remapped years from it. Load a series once, then simulate any
// number of target years against the same corpus.
type Simulator struct {
	opt     *Options
	catalog *calendar.Catalog

	source *timedataset.TimeDataset
	corpus *corpus.SourceCorpus
}

// New creates a Simulator using the provided options. If no options are
// provided a default is used.
func New(opt *Options) (*Simulator, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if !opt.Region.Valid() {
		return nil, fmt.Errorf("%q, %w", opt.Region, ErrUnknownRegion)
	}

	var source calendar.Source
	if !opt.DisableFetch {
		source = calendar.NewClient(opt.FetchTimeout)
	}

	return &Simulator{
		opt:     opt,
		catalog: calendar.NewCatalog(opt.Region, source),
	}, nil
}

// LoadSeries sets the source profile and builds the source corpus from it.
// Days without exactly 96 samples are dropped; a series yielding no
// complete day at all is rejected.
func (s *Simulator) LoadSeries(ds *timedataset.TimeDataset) error {
	if ds == nil || len(ds.T) == 0 {
		return timedataset.ErrNoSamples
	}

	c := corpus.Build(ds, s.catalog)
	if c.TotalDays() == 0 {
		return ErrNoCompleteDays
	}

	s.source = ds.Copy()
	s.corpus = c
	return nil
}

// Source returns the loaded source series, nil before LoadSeries.
func (s *Simulator) Source() *timedataset.TimeDataset { return s.source }

// Corpus returns the categorized source days, nil before LoadSeries.
func (s *Simulator) Corpus() *corpus.SourceCorpus { return s.corpus }

// SourceYear returns the calendar year of the loaded profile.
func (s *Simulator) SourceYear() int {
	if s.source == nil {
		return 0
	}
	return s.source.StartYear()
}

// Region returns the federal state the simulator resolves holidays for.
func (s *Simulator) Region() calendar.Region { return s.opt.Region }

// Simulate remaps the source corpus onto one target year.
func (s *Simulator) Simulate(year int) (*remap.Result, error) {
	if s.corpus == nil {
		return nil, ErrNoSourceProfile
	}
	return remap.New(s.catalog, s.corpus).Remap(year), nil
}

// SimulateAll remaps the source corpus onto each target year.
func (s *Simulator) SimulateAll(years []int) (map[int]*remap.Result, error) {
	out := make(map[int]*remap.Result, len(years))
	for _, year := range years {
		res, err := s.Simulate(year)
		if err != nil {
			return nil, err
		}
		out[year] = res
	}
	return out, nil
}
