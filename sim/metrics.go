// Tracks pipeline-level counters of one analysis run.

package sim

import "fmt"

// RunMetrics aggregates statistics about the event loop
// for final reporting. Generator-side statistics (cross sections,
// error messages) are reported by the EventSource itself.
type RunMetrics struct {
	EventsRequested    int // Number of generator calls
	EventsGenerated    int // Calls that returned an event
	EventsFailed       int // Calls skipped after a per-event failure
	JetsFilled         int // Jets entered in the jet histograms
	ConstituentsFilled int // Constituents entered in the constituent histograms
}

// NewRunMetrics returns zeroed counters.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{}
}

// Print displays the counters at the end of the run.
func (m *RunMetrics) Print() {
	fmt.Println("=== Analysis Metrics ===")
	fmt.Printf("Events Requested     : %d\n", m.EventsRequested)
	fmt.Printf("Events Generated     : %d\n", m.EventsGenerated)
	fmt.Printf("Events Failed        : %d\n", m.EventsFailed)
	fmt.Printf("Jets Filled          : %d\n", m.JetsFilled)
	fmt.Printf("Constituents Filled  : %d\n", m.ConstituentsFilled)
	if m.EventsGenerated > 0 {
		fmt.Printf("Average Jets / Event : %.2f\n", float64(m.JetsFilled)/float64(m.EventsGenerated))
	}
	if m.JetsFilled > 0 {
		fmt.Printf("Average Constituents : %.2f\n", float64(m.ConstituentsFilled)/float64(m.JetsFilled))
	}
}
