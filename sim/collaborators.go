package sim

import "errors"

var (
	// ErrNotInitialized is returned by an EventSource asked for events before a
	// successful Init.
	ErrNotInitialized = errors.New("event source not initialized")

	// ErrEventFailed marks a recoverable per-event generation failure.
	// The pipeline skips the iteration and moves on.
	ErrEventFailed = errors.New("event generation failed")
)

// EventSource produces generated collision events.
type EventSource interface {
	// Init performs one-time setup. It must succeed before Next is called.
	Init() error
	// Next generates one event. Errors wrapping ErrEventFailed are recoverable.
	Next() (*Event, error)
	// Stat prints accumulated run statistics to stdout.
	Stat()
}

// JetClusterer groups particles into jets.
type JetClusterer interface {
	// Cluster returns the inclusive jets with pt >= ptMin, sorted by
	// decreasing pt. An empty input yields no jets.
	Cluster(particles []FourMomentum, ptMin float64) ([]Jet, error)
}

// Histogram is a fixed-binning accumulator handle.
type Histogram interface {
	Fill(x float64)
}

// HistogramSink books histograms and persists them.
type HistogramSink interface {
	// Book declares a histogram. Names are unique within a sink.
	Book(bins int, low, high float64, name string) (Histogram, error)
	// Write persists every booked histogram. It may be called once.
	Write() error
}
