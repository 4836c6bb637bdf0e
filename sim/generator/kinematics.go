package generator

import (
	"math"

	"go-hep.org/x/hep/fmom"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/inference-sim/ppjets/sim"
)

var beamAxis = r3.Vec{Z: 1}

func fourOf(p fmom.P4) sim.FourMomentum {
	return sim.FourMomentum{Px: p.Px(), Py: p.Py(), Pz: p.Pz(), E: p.E()}
}

func threeOf(p sim.FourMomentum) r3.Vec {
	v := p.P4()
	return fmom.VecOf(&v)
}

// direction returns the unit vector along the momentum of p, or the beam axis
// for a particle at rest.
func direction(p sim.FourMomentum) r3.Vec {
	v := threeOf(p)
	if r3.Norm(v) == 0 {
		return beamAxis
	}
	return r3.Unit(v)
}

// onShell builds a four-momentum of mass m from a three-momentum.
func onShell(p r3.Vec, m float64) sim.FourMomentum {
	return sim.FourMomentum{Px: p.X, Py: p.Y, Pz: p.Z, E: math.Sqrt(r3.Norm2(p) + m*m)}
}

// fromPtEtaPhi builds a four-momentum of mass m.
func fromPtEtaPhi(pt, eta, phi, m float64) sim.FourMomentum {
	p := fmom.NewPtEtaPhiM(pt, eta, phi, m)
	return fourOf(&p)
}

// transverseBasis returns two unit vectors orthogonal to n and to each other.
func transverseBasis(n r3.Vec) (r3.Vec, r3.Vec) {
	ref := beamAxis
	if math.Abs(n.Z) > 0.9 {
		ref = r3.Vec{X: 1}
	}
	e1 := r3.Unit(r3.Cross(n, ref))
	return e1, r3.Cross(n, e1)
}

// boost transforms p from the rest frame of a system moving with velocity
// beta into the lab frame.
func boost(p sim.FourMomentum, beta r3.Vec) sim.FourMomentum {
	if beta == (r3.Vec{}) {
		return p
	}
	v := p.P4()
	return fourOf(fmom.Boost(&v, beta))
}

// twoBodyDecay decays parent isotropically in its rest frame into daughters
// of masses m1 and m2. It returns false when the decay is closed.
func twoBodyDecay(parent sim.FourMomentum, m1, m2 float64, rng *rand.Rand) (sim.FourMomentum, sim.FourMomentum, bool) {
	pp := parent.P4()
	m2Parent := pp.M2()
	if m2Parent <= 0 || parent.E <= 0 {
		return sim.FourMomentum{}, sim.FourMomentum{}, false
	}
	mParent := math.Sqrt(m2Parent)
	if mParent <= m1+m2 {
		return sim.FourMomentum{}, sim.FourMomentum{}, false
	}
	pStar := math.Sqrt((m2Parent-(m1+m2)*(m1+m2))*(m2Parent-(m1-m2)*(m1-m2))) / (2 * mParent)
	cosTheta := 2*rng.Float64() - 1
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	phi := 2 * math.Pi * rng.Float64()
	dir := r3.Vec{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}

	beta := fmom.BoostOf(&pp)
	d1 := boost(onShell(r3.Scale(pStar, dir), m1), beta)
	d2 := boost(onShell(r3.Scale(-pStar, dir), m2), beta)
	return d1, d2, true
}
