package sim

import (
	"math"

	"go-hep.org/x/hep/fmom"
)

// FourMomentum is a (px, py, pz, E) vector in GeV.
type FourMomentum struct {
	Px, Py, Pz, E float64
}

// P4 returns the go-hep representation of the vector.
func (p FourMomentum) P4() fmom.PxPyPzE {
	return fmom.NewPxPyPzE(p.Px, p.Py, p.Pz, p.E)
}

// Pt returns the transverse momentum.
func (p FourMomentum) Pt() float64 {
	v := p.P4()
	return v.Pt()
}

// Eta returns the pseudorapidity.
func (p FourMomentum) Eta() float64 {
	v := p.P4()
	return v.Eta()
}

// Phi returns the azimuthal angle in [0, 2π).
func (p FourMomentum) Phi() float64 {
	v := p.P4()
	phi := v.Phi()
	if phi < 0 {
		phi += 2 * math.Pi
	}
	if phi >= 2*math.Pi {
		phi -= 2 * math.Pi
	}
	return phi
}

// Add returns the vector sum p+q.
func (p FourMomentum) Add(q FourMomentum) FourMomentum {
	return FourMomentum{Px: p.Px + q.Px, Py: p.Py + q.Py, Pz: p.Pz + q.Pz, E: p.E + q.E}
}

// Particle is one entry in the event record.
// Status codes follow the usual generator convention: positive for particles
// that exist at the end of the event, negative for beams, intermediate partons
// and decayed hadrons.
type Particle struct {
	ID       int          // PDG code
	Status   int          // > 0 final, < 0 intermediate
	Mother1  int          // index of first mother in the record (0 = none)
	Mother2  int          // index of second mother in the record (0 = none)
	Momentum FourMomentum // (px, py, pz, E) in GeV
	Mass     float64      // GeV
	Visible  bool         // species registers in an idealized detector
}

// IsFinal reports whether the particle is not further transformed in the event.
func (p *Particle) IsFinal() bool {
	return p.Status > 0
}

// IsVisible reports whether the particle species would be detected.
// Neutrinos and other invisible species return false.
func (p *Particle) IsVisible() bool {
	return p.Visible
}

// Event is the particle record of one generated collision.
// It is owned by the loop iteration that requested it.
type Event struct {
	Number    int        // 0-based index among accepted events
	Process   int        // subprocess code of the hard scattering
	PTHat     float64    // transverse momentum of the hard scattering
	Particles []Particle // ordered record; index 0 is the whole system
}

// Size returns the number of entries in the record.
func (e *Event) Size() int {
	return len(e.Particles)
}

// Append adds a particle and returns its index.
func (e *Event) Append(p Particle) int {
	e.Particles = append(e.Particles, p)
	return len(e.Particles) - 1
}

// SelectVisibleFinal returns the four-momenta of all particles that are both final
// and visible, in record order. The result never aliases the event.
func SelectVisibleFinal(ev *Event) []FourMomentum {
	if ev == nil {
		return nil
	}
	inputs := make([]FourMomentum, 0, len(ev.Particles))
	for i := range ev.Particles {
		p := &ev.Particles[i]
		if !p.IsFinal() {
			continue
		}
		if !p.IsVisible() {
			continue
		}
		inputs = append(inputs, p.Momentum)
	}
	return inputs
}

// Jet is a cluster of final-state particles.
type Jet struct {
	Momentum     FourMomentum   // vector sum of constituents (E-scheme)
	Constituents []FourMomentum // inputs merged into this jet
}

// Pt returns the jet transverse momentum.
func (j *Jet) Pt() float64 { return j.Momentum.Pt() }

// Eta returns the jet pseudorapidity.
func (j *Jet) Eta() float64 { return j.Momentum.Eta() }

// Phi returns the jet azimuth in [0, 2π).
func (j *Jet) Phi() float64 { return j.Momentum.Phi() }
