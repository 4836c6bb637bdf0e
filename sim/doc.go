// Package sim provides the jet-analysis pipeline of ppjets.
//
// # Reading Guide
//
// Start with these three files to understand the pipeline:
//   - event.go: particle record, four-momenta and jets, and the final+visible selection
//   - collaborators.go: the EventSource, JetClusterer and HistogramSink interfaces
//   - analysis.go: Execute and the event loop (generate, filter, cluster, fill)
//
// # Architecture
//
// The sim package defines interfaces and bridge types; implementations live in
// sub-packages:
//   - sim/generator/: toy hard-QCD event generator with a key/value settings database
//   - sim/jets/: jet clustering over go-hep fastjet
//   - sim/histo/: histogram registry over go-hep hbook, written as YODA
//   - sim/publish/: upload of the output file to S3
//   - sim/trace/: per-event diagnostic trace
//
// # Key Interfaces
//
//   - EventSource: Init once, Next per event, Stat at the end
//   - JetClusterer: inclusive jets above a pt threshold, hardest first
//   - HistogramSink: Book fixed-binning histograms, Write them once
//
// Per-event generation failures wrap ErrEventFailed and are skipped; every
// other error ends the run.
package sim
