package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoSamples          = errors.New("no load samples")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than load values")
	ErrNonMonotonic       = errors.New("time feature is not strictly increasing")
	ErrCannotInferFreq    = errors.New("cannot infer sample frequency")
)

// TimeDataset represents a measured load series storing a slice of time
// points and a slice of load values. Both must be of the same length.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and load slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoSamples
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but load values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if currT.Before(lastT) || currT.Equal(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.T))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// StartYear returns the calendar year of the first sample. The source year
// of an uploaded profile is defined by its first timestamp.
func (td *TimeDataset) StartYear() int {
	if len(td.T) == 0 {
		return 0
	}
	return td.T[0].Year()
}
