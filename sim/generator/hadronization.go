package generator

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/ppjets/sim"
)

const (
	// fragmentation stops once the leftover momentum of a parton drops below this (GeV).
	fragmentationCutoff = 1.0
	// maxHadronsPerParton bounds the length of one fragmentation chain.
	maxHadronsPerParton = 60
	// semileptonicFraction is the probability that a parton chain ends in a
	// D meson decaying to mu nu.
	semileptonicFraction = 0.08
	// ueMultiplicity is the mean number of soft underlying-event particles.
	ueMultiplicity = 25
	// ueMeanPt is the mean transverse momentum of soft particles (GeV).
	ueMeanPt = 0.5
	// ueEtaMax bounds the pseudorapidity of soft particles.
	ueEtaMax = 5.0
)

// hadronSpecies lists the primary hadrons of a fragmentation chain with their
// relative production rates.
var hadronSpecies = []struct {
	id     int
	weight float64
}{
	{idPiPlus, 0.29},
	{-idPiPlus, 0.29},
	{idPi0, 0.25},
	{idKPlus, 0.05},
	{-idKPlus, 0.05},
	{idKLong, 0.04},
	{idProton, 0.015},
	{-idProton, 0.015},
	{idNeutron, 0.01},
}

func speciesWeights() []float64 {
	w := make([]float64, len(hadronSpecies))
	for i, s := range hadronSpecies {
		w[i] = s.weight
	}
	return w
}

// hadronizer turns outgoing partons into hadrons and adds soft activity.
type hadronizer struct {
	rng *sim.PartitionedRNG
}

// fragment appends the hadrons of one parton chain to ev and marks the parton
// as fragmented. Parton k uses its own random stream.
func (h *hadronizer) fragment(ev *sim.Event, partonIdx, k int) {
	rng := h.rng.ForSubsystem(sim.SubsystemParton(k))
	parton := &ev.Particles[partonIdx]
	parton.Status = statusFragment

	dir := direction(parton.Momentum)
	e1, e2 := transverseBasis(dir)
	z := distuv.Beta{Alpha: 1.5, Beta: 3, Src: rng}
	kT := distuv.Normal{Mu: 0, Sigma: 0.35, Src: rng}
	species := distuv.NewCategorical(speciesWeights(), rng)

	remaining := r3.Norm(threeOf(parton.Momentum))
	for n := 0; n < maxHadronsPerParton && remaining > fragmentationCutoff; n++ {
		pl := z.Rand() * remaining
		remaining -= pl
		id := hadronSpecies[int(species.Rand())].id
		p := r3.Add(r3.Add(r3.Scale(pl, dir), r3.Scale(kT.Rand(), e1)), r3.Scale(kT.Rand(), e2))
		h.addHadron(ev, id, onShell(p, massOf(id)), partonIdx, statusJetHad)
	}
	if remaining > 2*massOf(idPiPlus) {
		id := idPiPlus
		if rng.Float64() < 0.5 {
			id = -id
		}
		h.addHadron(ev, id, onShell(r3.Scale(remaining, dir), massOf(id)), partonIdx, statusJetHad)
	}

	if rng.Float64() < semileptonicFraction {
		h.addCharm(ev, partonIdx, dir, rng)
	}
}

// addCharm appends a D meson along the parton direction and decays it
// semileptonically: D+ -> K_L0 mu+ nu_mu.
func (h *hadronizer) addCharm(ev *sim.Event, partonIdx int, dir r3.Vec, rng *rand.Rand) {
	sign := 1
	if rng.Float64() < 0.5 {
		sign = -1
	}
	pMag := distuv.Exponential{Rate: 1.0 / 8, Src: rng}.Rand() + 2
	d := h.addHadron(ev, sign*idDPlus, onShell(r3.Scale(pMag, dir), massOf(idDPlus)), partonIdx, statusJetHad)
	dMom := ev.Particles[d].Momentum

	// D -> K + W*, W* -> mu nu with a uniformly distributed virtual mass.
	mW := massOf(idMuon) + rng.Float64()*(massOf(idDPlus)-massOf(idKLong)-massOf(idMuon))
	kMom, wMom, ok := twoBodyDecay(dMom, massOf(idKLong), mW, rng)
	if !ok {
		return
	}
	muMom, nuMom, ok := twoBodyDecay(wMom, massOf(idMuon), 0, rng)
	if !ok {
		return
	}
	ev.Particles[d].Status = statusDecayed
	// Positive D gives mu+ (PDG -13) and nu_mu.
	h.append(ev, idKLong, kMom, d, statusDaughter)
	h.append(ev, -sign*idMuon, muMom, d, statusDaughter)
	h.append(ev, sign*idNuMu, nuMom, d, statusDaughter)
}

// addHadron appends a primary hadron, decaying it immediately when it is a
// pi0. It returns the index of the hadron.
func (h *hadronizer) addHadron(ev *sim.Event, id int, p sim.FourMomentum, mother, status int) int {
	idx := h.append(ev, id, p, mother, status)
	if id == idPi0 {
		h.decayPi0(ev, idx)
	}
	return idx
}

func (h *hadronizer) decayPi0(ev *sim.Event, idx int) {
	rng := h.rng.ForSubsystem(sim.SubsystemHadronization)
	g1, g2, ok := twoBodyDecay(ev.Particles[idx].Momentum, 0, 0, rng)
	if !ok {
		return
	}
	ev.Particles[idx].Status = statusDecayed
	h.append(ev, idPhoton, g1, idx, statusDaughter)
	h.append(ev, idPhoton, g2, idx, statusDaughter)
}

func (h *hadronizer) append(ev *sim.Event, id int, p sim.FourMomentum, mother, status int) int {
	return ev.Append(sim.Particle{
		ID:       id,
		Status:   status,
		Mother1:  mother,
		Momentum: p,
		Mass:     massOf(id),
		Visible:  isVisible(id),
	})
}

// underlyingEvent appends a Poisson number of soft particles attached to the
// two beams. With hadronize off they are left as soft gluons.
func (h *hadronizer) underlyingEvent(ev *sim.Event, beamA, beamB int, hadronize bool) {
	rng := h.rng.ForSubsystem(sim.SubsystemUnderlyingEvent)
	n := int(distuv.Poisson{Lambda: ueMultiplicity, Src: rng}.Rand())
	pt := distuv.Exponential{Rate: 1 / ueMeanPt, Src: rng}
	eta := distuv.Uniform{Min: -ueEtaMax, Max: ueEtaMax, Src: rng}
	phi := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}
	species := distuv.NewCategorical(speciesWeights(), rng)

	for i := 0; i < n; i++ {
		id := idGluon
		status := statusUEParton
		if hadronize {
			id = hadronSpecies[int(species.Rand())].id
			status = statusUEHad
		}
		p := fromPtEtaPhi(pt.Rand(), eta.Rand(), phi.Rand(), massOf(id))
		idx := h.addHadron(ev, id, p, beamA, status)
		ev.Particles[idx].Mother2 = beamB
	}
}
