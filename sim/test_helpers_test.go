package sim

import (
	"fmt"

	"github.com/inference-sim/ppjets/sim/internal/testutil"
)

// fakeSource replays a scripted sequence of Next results and records every call
// in order, so tests can assert on call counts and sequencing.
type fakeSource struct {
	initErr  error
	events   []*Event // nil entry = per-event failure
	fatalAt  int      // iteration returning a non-recoverable error; -1 = never
	calls    []string
	nextSeen int
	inited   bool
}

func newFakeSource(events ...*Event) *fakeSource {
	return &fakeSource{events: events, fatalAt: -1}
}

func (s *fakeSource) Init() error {
	s.calls = append(s.calls, "init")
	if s.initErr != nil {
		return s.initErr
	}
	s.inited = true
	return nil
}

func (s *fakeSource) Next() (*Event, error) {
	s.calls = append(s.calls, "next")
	if !s.inited {
		return nil, ErrNotInitialized
	}
	i := s.nextSeen
	s.nextSeen++
	if i == s.fatalAt {
		return nil, fmt.Errorf("generator crashed")
	}
	if len(s.events) == 0 {
		return &Event{Number: i}, nil
	}
	ev := s.events[i%len(s.events)]
	if ev == nil {
		return nil, fmt.Errorf("iteration %d: %w", i, ErrEventFailed)
	}
	return ev, nil
}

func (s *fakeSource) Stat() {
	s.calls = append(s.calls, "stat")
}

func (s *fakeSource) count(call string) int {
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

// fakeClusterer makes one jet out of all inputs when their summed pt passes
// the threshold. It records every input slice it receives.
type fakeClusterer struct {
	err    error
	inputs [][]FourMomentum
	jets   []Jet // when set, returned verbatim for non-empty input
}

func (c *fakeClusterer) Cluster(particles []FourMomentum, ptMin float64) ([]Jet, error) {
	c.inputs = append(c.inputs, particles)
	if c.err != nil {
		return nil, c.err
	}
	if len(particles) == 0 {
		return nil, nil
	}
	if c.jets != nil {
		return c.jets, nil
	}
	var sum FourMomentum
	for _, p := range particles {
		sum = sum.Add(p)
	}
	if sum.Pt() < ptMin {
		return nil, nil
	}
	return []Jet{{Momentum: sum, Constituents: particles}}, nil
}

type fakeHistogram struct {
	spec  HistogramSpec
	fills []float64
}

func (h *fakeHistogram) Fill(x float64) { h.fills = append(h.fills, x) }

// fakeSink keeps histograms in memory and counts Write calls.
type fakeSink struct {
	hists    map[string]*fakeHistogram
	order    []string
	writes   int
	writeErr error
	onWrite  func()
}

func newFakeSink() *fakeSink {
	return &fakeSink{hists: make(map[string]*fakeHistogram)}
}

func (s *fakeSink) Book(bins int, low, high float64, name string) (Histogram, error) {
	if _, ok := s.hists[name]; ok {
		return nil, fmt.Errorf("duplicate histogram %q", name)
	}
	h := &fakeHistogram{spec: HistogramSpec{Name: name, Bins: bins, Low: low, High: high}}
	s.hists[name] = h
	s.order = append(s.order, name)
	return h, nil
}

func (s *fakeSink) Write() error {
	s.writes++
	if s.onWrite != nil {
		s.onWrite()
	}
	return s.writeErr
}

func (s *fakeSink) fills(name string) int {
	return len(s.hists[name].fills)
}

func (s *fakeSink) snapshot() map[string][]float64 {
	out := make(map[string][]float64, len(s.hists))
	for name, h := range s.hists {
		out[name] = append([]float64(nil), h.fills...)
	}
	return out
}

// particle builds a final particle from pt, eta and phi.
func particle(id int, pt, eta, phi float64, visible bool) Particle {
	return Particle{
		ID:       id,
		Status:   91,
		Momentum: massless(pt, eta, phi),
		Visible:  visible,
	}
}

func massless(pt, eta, phi float64) FourMomentum {
	px, py, pz, e := testutil.Massless(pt, eta, phi)
	return FourMomentum{Px: px, Py: py, Pz: pz, E: e}
}
