// Package jets adapts go-hep's fastjet to the sim.JetClusterer interface.
package jets

import (
	"fmt"
	"sort"

	"go-hep.org/x/hep/fastjet"

	"github.com/inference-sim/ppjets/sim"
)

var algorithms = map[string]fastjet.JetAlgorithm{
	sim.JetAlgorithmAntiKt:    fastjet.AntiKtAlgorithm,
	sim.JetAlgorithmKt:        fastjet.KtAlgorithm,
	sim.JetAlgorithmCambridge: fastjet.CambridgeAlgorithm,
}

// Clusterer runs inclusive sequential-recombination clustering with the
// E recombination scheme.
type Clusterer struct {
	name   string
	radius float64
	def    fastjet.JetDefinition
}

var _ sim.JetClusterer = (*Clusterer)(nil)

// NewClusterer returns a clusterer for the named algorithm ("antikt", "kt",
// "cambridge") and distance parameter r.
func NewClusterer(algorithm string, r float64) (*Clusterer, error) {
	alg, ok := algorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("unknown jet algorithm %q", algorithm)
	}
	if r <= 0 {
		return nil, fmt.Errorf("jet radius must be > 0, got %g", r)
	}
	return &Clusterer{
		name:   algorithm,
		radius: r,
		def:    fastjet.NewJetDefinition(alg, r, fastjet.EScheme, fastjet.BestStrategy),
	}, nil
}

// String describes the jet definition, e.g. "antikt R=0.4".
func (c *Clusterer) String() string {
	return fmt.Sprintf("%s R=%g", c.name, c.radius)
}

// Cluster returns the inclusive jets with pt >= ptMin, sorted by decreasing pt.
func (c *Clusterer) Cluster(particles []sim.FourMomentum, ptMin float64) ([]sim.Jet, error) {
	if len(particles) == 0 {
		return nil, nil
	}

	inputs := make([]fastjet.Jet, len(particles))
	for i, p := range particles {
		inputs[i] = fastjet.NewJet(p.Px, p.Py, p.Pz, p.E)
	}

	cs, err := fastjet.NewClusterSequence(inputs, c.def)
	if err != nil {
		return nil, fmt.Errorf("building cluster sequence: %w", err)
	}
	found, err := cs.InclusiveJets(ptMin)
	if err != nil {
		return nil, fmt.Errorf("inclusive jets: %w", err)
	}

	sort.Stable(fastjet.ByPt(found))

	out := make([]sim.Jet, 0, len(found))
	for i := range found {
		j := &found[i]
		jet := sim.Jet{Momentum: sim.FourMomentum{Px: j.Px(), Py: j.Py(), Pz: j.Pz(), E: j.E()}}
		if jet.Pt() < ptMin {
			continue
		}
		for _, constituent := range j.Constituents() {
			jet.Constituents = append(jet.Constituents, sim.FourMomentum{
				Px: constituent.Px(), Py: constituent.Py(), Pz: constituent.Pz(), E: constituent.E(),
			})
		}
		out = append(out, jet)
	}
	return out, nil
}
