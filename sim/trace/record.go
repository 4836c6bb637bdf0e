// Package trace provides per-event diagnostic recording for an analysis run.
// This package has no dependencies on sim/ and stores plain data types.
package trace

// EventRecord captures the outcome of one event-loop iteration.
type EventRecord struct {
	Index        int     // loop iteration, 0-based
	Generated    bool    // false when the generator reported a per-event failure
	Inputs       int     // visible final-state particles handed to clustering
	Jets         int     // jets passing the pt threshold
	Constituents int     // constituents summed over all jets
	LeadingJetPt float64 // pt of the hardest jet; 0 if none
}
