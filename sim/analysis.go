package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ppjets/sim/trace"
)

// HistogramSet holds the six handles filled by the event loop.
type HistogramSet struct {
	JetPt, JetEta, JetPhi                         Histogram
	ConstituentPt, ConstituentEta, ConstituentPhi Histogram
}

// BookHistograms books DefaultHistograms on sink, in table order.
func BookHistograms(sink HistogramSink) (*HistogramSet, error) {
	handles := make(map[string]Histogram, len(DefaultHistograms))
	for _, spec := range DefaultHistograms {
		h, err := sink.Book(spec.Bins, spec.Low, spec.High, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("booking %q: %w", spec.Name, err)
		}
		handles[spec.Name] = h
	}
	return &HistogramSet{
		JetPt:          handles[HistJetPt],
		JetEta:         handles[HistJetEta],
		JetPhi:         handles[HistJetPhi],
		ConstituentPt:  handles[HistConstituentPt],
		ConstituentEta: handles[HistConstituentEta],
		ConstituentPhi: handles[HistConstituentPhi],
	}, nil
}

// Analysis owns the event loop: generate, filter, cluster, fill.
type Analysis struct {
	source    EventSource
	clusterer JetClusterer
	hists     *HistogramSet
	ptMin     float64
	trace     *trace.RunTrace // nil = no tracing

	Metrics *RunMetrics
}

// NewAnalysis wires an initialized source, a clusterer and booked histograms.
func NewAnalysis(source EventSource, clusterer JetClusterer, hists *HistogramSet, jetPtMin float64, rt *trace.RunTrace) *Analysis {
	return &Analysis{
		source:    source,
		clusterer: clusterer,
		hists:     hists,
		ptMin:     jetPtMin,
		trace:     rt,
		Metrics:   NewRunMetrics(),
	}
}

// Run performs exactly nEvents generator calls. Per-event generation failures
// are skipped; every other error stops the loop and is returned.
func (a *Analysis) Run(nEvents int) error {
	for i := 0; i < nEvents; i++ {
		if err := a.processEvent(i); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analysis) processEvent(i int) error {
	a.Metrics.EventsRequested++
	ev, err := a.source.Next()
	if err != nil {
		if !errors.Is(err, ErrEventFailed) {
			return fmt.Errorf("event %d: %w", i, err)
		}
		a.Metrics.EventsFailed++
		logrus.Debugf("event %d skipped: %v", i, err)
		if a.trace.Enabled() {
			a.trace.RecordEvent(trace.EventRecord{Index: i})
		}
		return nil
	}
	a.Metrics.EventsGenerated++

	inputs := SelectVisibleFinal(ev)
	jets, err := a.clusterer.Cluster(inputs, a.ptMin)
	if err != nil {
		return fmt.Errorf("event %d: clustering: %w", i, err)
	}

	constituents := 0
	for j := range jets {
		jet := &jets[j]
		a.hists.JetPt.Fill(jet.Pt())
		a.hists.JetEta.Fill(jet.Eta())
		a.hists.JetPhi.Fill(jet.Phi())
		for _, c := range jet.Constituents {
			a.hists.ConstituentPt.Fill(c.Pt())
			a.hists.ConstituentEta.Fill(c.Eta())
			a.hists.ConstituentPhi.Fill(c.Phi())
		}
		constituents += len(jet.Constituents)
	}
	a.Metrics.JetsFilled += len(jets)
	a.Metrics.ConstituentsFilled += constituents

	if a.trace.Enabled() {
		rec := trace.EventRecord{
			Index:        i,
			Generated:    true,
			Inputs:       len(inputs),
			Jets:         len(jets),
			Constituents: constituents,
		}
		if len(jets) > 0 {
			rec.LeadingJetPt = jets[0].Pt()
		}
		a.trace.RecordEvent(rec)
	}
	return nil
}

// Execute runs the whole pipeline once: initialize the source, book the
// histograms, run the event loop, write the output and print the generator
// statistics. Setup errors are returned before any event is requested.
func Execute(source EventSource, clusterer JetClusterer, sink HistogramSink, cfg RunConfig, rt *trace.RunTrace) (*RunMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}
	if err := source.Init(); err != nil {
		return nil, fmt.Errorf("initializing event source: %w", err)
	}
	hists, err := BookHistograms(sink)
	if err != nil {
		return nil, err
	}

	analysis := NewAnalysis(source, clusterer, hists, cfg.Jets.PtMin, rt)
	logrus.Infof("Starting event loop: %d events, %s R=%.2f, jet pT >= %.1f GeV",
		cfg.Events, cfg.Jets.Algorithm, cfg.Jets.Radius, cfg.Jets.PtMin)
	if err := analysis.Run(cfg.Events); err != nil {
		return analysis.Metrics, err
	}

	if err := sink.Write(); err != nil {
		return analysis.Metrics, fmt.Errorf("writing histograms: %w", err)
	}
	source.Stat()
	return analysis.Metrics, nil
}
