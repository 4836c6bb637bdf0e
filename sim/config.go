package sim

import (
	"fmt"
	"math"
)

// Histogram names booked for every run.
const (
	HistJetPt             = "jet-pt"
	HistJetEta            = "jet-eta"
	HistJetPhi            = "jet-phi"
	HistConstituentPt     = "jet-constituent-pt"
	HistConstituentEta    = "jet-constituent-eta"
	HistConstituentPhi    = "jet-constituent-phi"
	DefaultRunLabel       = "PPJETS_YODA"
	DefaultOutputPath     = "ppjets_yoda.yoda"
	DefaultNumberOfEvents = 1000
	DefaultSeed           = 42
)

// HistogramSpec fixes the binning of one histogram.
type HistogramSpec struct {
	Name string  // unique within a run
	Bins int     // number of equal-width bins (> 0)
	Low  float64 // lower edge of the first bin
	High float64 // upper edge of the last bin
}

// DefaultHistograms is the booking table, in booking order.
var DefaultHistograms = []HistogramSpec{
	{Name: HistJetPt, Bins: 100, Low: 0, High: 200},
	{Name: HistJetEta, Bins: 20, Low: -5, High: 5},
	{Name: HistJetPhi, Bins: 100, Low: 0, High: 6.5},
	{Name: HistConstituentPt, Bins: 100, Low: 0, High: 50},
	{Name: HistConstituentEta, Bins: 20, Low: -5, High: 5},
	{Name: HistConstituentPhi, Bins: 100, Low: 0, High: 6.5},
}

// DefaultGeneratorSettings configures 5.36 TeV pp hard-QCD production.
// pTHatMin sits well above the 20 GeV jet cut so that jets near the cut are
// not shaped by the generation threshold.
var DefaultGeneratorSettings = []string{
	"Beams:idA = 2212",
	"Beams:idB = 2212",
	"Beams:eCM = 5360.",
	"HardQCD:all = on",
	"PhaseSpace:pTHatMin = 50.",
	"PhaseSpace:pTHatMax = 200.",
}

// Jet algorithm names accepted in JetConfig.Algorithm.
const (
	JetAlgorithmAntiKt    = "antikt"
	JetAlgorithmKt        = "kt"
	JetAlgorithmCambridge = "cambridge"
)

var validJetAlgorithms = map[string]bool{
	JetAlgorithmAntiKt:    true,
	JetAlgorithmKt:        true,
	JetAlgorithmCambridge: true,
}

// IsValidJetAlgorithm returns true if name is a recognized jet algorithm.
func IsValidJetAlgorithm(name string) bool {
	return validJetAlgorithms[name]
}

// JetConfig groups the jet definition and selection.
type JetConfig struct {
	Algorithm string  `yaml:"algorithm"` // "antikt" (default), "kt", "cambridge"
	Radius    float64 `yaml:"radius"`    // distance parameter R (must be > 0)
	PtMin     float64 `yaml:"pt_min"`    // inclusive jet threshold in GeV (>= 0)
}

// RunConfig is the immutable description of one analysis run.
type RunConfig struct {
	Label     string    `yaml:"label"`     // run label, prefixes every histogram path
	Output    string    `yaml:"output"`    // output file path
	Events    int       `yaml:"events"`    // number of generator calls (>= 0)
	Seed      int64     `yaml:"seed"`      // master random seed
	Generator []string  `yaml:"generator"` // ordered "Key = value" setting lines
	Jets      JetConfig `yaml:"jets"`
}

// DefaultRunConfig returns the configuration of the reference run.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Label:     DefaultRunLabel,
		Output:    DefaultOutputPath,
		Events:    DefaultNumberOfEvents,
		Seed:      DefaultSeed,
		Generator: append([]string(nil), DefaultGeneratorSettings...),
		Jets: JetConfig{
			Algorithm: JetAlgorithmAntiKt,
			Radius:    0.4,
			PtMin:     20.0,
		},
	}
}

// Validate checks that all fields are usable.
func (c *RunConfig) Validate() error {
	if c.Label == "" {
		return fmt.Errorf("label must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if c.Events < 0 {
		return fmt.Errorf("events must be non-negative, got %d", c.Events)
	}
	if !IsValidJetAlgorithm(c.Jets.Algorithm) {
		return fmt.Errorf("jets: unknown algorithm %q; valid: antikt, kt, cambridge", c.Jets.Algorithm)
	}
	if c.Jets.Radius <= 0 || math.IsNaN(c.Jets.Radius) || math.IsInf(c.Jets.Radius, 0) {
		return fmt.Errorf("jets: radius must be a positive finite number, got %v", c.Jets.Radius)
	}
	if c.Jets.PtMin < 0 || math.IsNaN(c.Jets.PtMin) || math.IsInf(c.Jets.PtMin, 0) {
		return fmt.Errorf("jets: pt_min must be a non-negative finite number, got %v", c.Jets.PtMin)
	}
	return nil
}
