// Package plot renders a score distribution as a titled terminal histogram.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/rewired-gh/quantumscout/internal/distribution"
)

// Options controls histogram layout
type Options struct {
	Width int // bar width in characters
	Bins  int // number of histogram buckets
}

// DefaultOptions returns the layout used when none is configured
func DefaultOptions() Options {
	return Options{Width: 60, Bins: 16}
}

// Source is what the renderer needs from a distribution
type Source interface {
	Series() []distribution.Entry
	Shots() int
	Title() string
}

// ErrEmptySeries is returned when there is nothing to plot
var ErrEmptySeries = errors.New("distribution has no outcomes")

// Samples expands a series back into one value per shot
func Samples(series []distribution.Entry, shots int) []float64 {
	var samples []float64
	for _, e := range series {
		n := int(math.Round(e.Probability / 100 * float64(shots)))
		for i := 0; i < n; i++ {
			samples = append(samples, float64(e.Value))
		}
	}
	return samples
}

// Render writes the title followed by the histogram of src
func Render(w io.Writer, src Source, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = DefaultOptions().Width
	}
	if opts.Bins <= 0 {
		opts.Bins = DefaultOptions().Bins
	}

	samples := Samples(src.Series(), src.Shots())
	if len(samples) == 0 {
		return ErrEmptySeries
	}

	title := src.Title()
	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("=", len(title))); err != nil {
		return err
	}
	hist := histogram.Hist(opts.Bins, samples)
	return histogram.Fprint(w, hist, histogram.Linear(opts.Width))
}

// Table writes one "value  probability%" line per observed outcome
func Table(w io.Writer, series []distribution.Entry) error {
	for _, e := range series {
		if _, err := fmt.Fprintf(w, "%4d  %7.3f%%\n", e.Value, e.Probability); err != nil {
			return err
		}
	}
	return nil
}
