// Package histo books fixed-binning histograms under a run label and writes
// them to a YODA text file.
package histo

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/yodacnv"

	"github.com/inference-sim/ppjets/sim"
)

var (
	// ErrDuplicateName is returned when a name is booked twice.
	ErrDuplicateName = errors.New("histogram already booked")

	// ErrWritten is returned by Book or Write once the registry has been written.
	ErrWritten = errors.New("histograms already written")
)

// Histogram is a booked 1D histogram with unit-weight fills.
type Histogram struct {
	name string
	h1d  *hbook.H1D
}

// Fill adds one entry at x. Values outside the range land in the under- and
// overflow bins.
func (h *Histogram) Fill(x float64) { h.h1d.Fill(x, 1) }

// Name returns the booked name.
func (h *Histogram) Name() string { return h.name }

// Entries returns the number of fills, including under- and overflow.
func (h *Histogram) Entries() int64 { return h.h1d.Entries() }

// H1D exposes the underlying hbook histogram.
func (h *Histogram) H1D() *hbook.H1D { return h.h1d }

// Registry owns every histogram of one run and the output file they are
// written to. Paths inside the file are "/<label>/<name>".
//
// Thread-safety: NOT thread-safe.
type Registry struct {
	label   string
	path    string
	fs      billy.Filesystem
	hists   []*Histogram
	byName  map[string]*Histogram
	written bool
}

var _ sim.HistogramSink = (*Registry)(nil)

// NewRegistry binds a run label and an output path on fs.
func NewRegistry(label, path string, fs billy.Filesystem) *Registry {
	return &Registry{
		label:  label,
		path:   path,
		fs:     fs,
		byName: make(map[string]*Histogram),
	}
}

// Book declares a histogram with bins equal-width bins on [low, high).
func (r *Registry) Book(bins int, low, high float64, name string) (sim.Histogram, error) {
	if r.written {
		return nil, fmt.Errorf("booking %q: %w", name, ErrWritten)
	}
	if name == "" {
		return nil, fmt.Errorf("booking: empty histogram name")
	}
	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("booking %q: %w", name, ErrDuplicateName)
	}
	if bins <= 0 {
		return nil, fmt.Errorf("booking %q: bins must be > 0, got %d", name, bins)
	}
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) || low >= high {
		return nil, fmt.Errorf("booking %q: invalid range [%g, %g)", name, low, high)
	}

	// The YODA path is "/" + Ann["name"].
	h1d := hbook.NewH1D(bins, low, high)
	h1d.Ann["name"] = strings.TrimPrefix(r.Path(name), "/")
	h := &Histogram{name: name, h1d: h1d}
	r.hists = append(r.hists, h)
	r.byName[name] = h
	return h, nil
}

// Path returns the in-file path of a histogram name.
func (r *Registry) Path(name string) string {
	return "/" + r.label + "/" + name
}

// Get returns a booked histogram by name.
func (r *Registry) Get(name string) (*Histogram, bool) {
	h, ok := r.byName[name]
	return h, ok
}

// Histograms returns the booked histograms in booking order.
func (r *Registry) Histograms() []*Histogram {
	return append([]*Histogram(nil), r.hists...)
}

// OutputPath returns the file the registry writes to.
func (r *Registry) OutputPath() string { return r.path }

// Filesystem returns the filesystem the registry writes to.
func (r *Registry) Filesystem() billy.Filesystem { return r.fs }

// Write serializes every histogram in booking order. It may be called once.
func (r *Registry) Write() error {
	if r.written {
		return ErrWritten
	}
	r.written = true

	if dir := path.Dir(r.path); dir != "." && dir != "/" {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := r.fs.Create(r.path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", r.path, err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# %s: %d histograms\n", r.label, len(r.hists))
	objs := make([]yodacnv.Marshaler, len(r.hists))
	for i, h := range r.hists {
		objs[i] = h.h1d
	}
	if err := yodacnv.Write(w, objs...); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", r.path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", r.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", r.path, err)
	}
	logrus.Infof("histo: wrote %d histograms to %s", len(r.hists), r.path)
	return nil
}
