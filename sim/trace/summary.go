package trace

import (
	"fmt"
	"io"
	"sort"
)

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	TotalEvents     int
	FailedEvents    int
	JetlessEvents   int // generated events with no jet above threshold
	MeanJets        float64
	MaxJets         int
	MeanInputs      float64
	MaxLeadingJetPt float64
	JetMultiplicity map[int]int // jets per generated event → number of events
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *TraceSummary {
	summary := &TraceSummary{
		JetMultiplicity: make(map[int]int),
	}
	if rt == nil {
		return summary
	}

	summary.TotalEvents = len(rt.Events)
	totalJets, totalInputs, generated := 0, 0, 0
	for _, ev := range rt.Events {
		if !ev.Generated {
			summary.FailedEvents++
			continue
		}
		generated++
		totalJets += ev.Jets
		totalInputs += ev.Inputs
		summary.JetMultiplicity[ev.Jets]++
		if ev.Jets == 0 {
			summary.JetlessEvents++
		}
		if ev.Jets > summary.MaxJets {
			summary.MaxJets = ev.Jets
		}
		if ev.LeadingJetPt > summary.MaxLeadingJetPt {
			summary.MaxLeadingJetPt = ev.LeadingJetPt
		}
	}
	if generated > 0 {
		summary.MeanJets = float64(totalJets) / float64(generated)
		summary.MeanInputs = float64(totalInputs) / float64(generated)
	}

	return summary
}

// Print writes the summary in a fixed human-readable layout.
func (s *TraceSummary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Event Trace Summary ===")
	fmt.Fprintf(w, "Traced Events        : %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Failed Events        : %d\n", s.FailedEvents)
	fmt.Fprintf(w, "Jetless Events       : %d\n", s.JetlessEvents)
	fmt.Fprintf(w, "Mean Visible Inputs  : %.2f\n", s.MeanInputs)
	fmt.Fprintf(w, "Mean Jets / Event    : %.2f\n", s.MeanJets)
	fmt.Fprintf(w, "Max Jets / Event     : %d\n", s.MaxJets)
	fmt.Fprintf(w, "Max Leading Jet pT   : %.2f GeV\n", s.MaxLeadingJetPt)

	keys := make([]int, 0, len(s.JetMultiplicity))
	for k := range s.JetMultiplicity {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %2d jets            : %d\n", k, s.JetMultiplicity[k])
	}
}
