package sim

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/rand"
)

// === RunKey ===

// RunKey uniquely identifies a reproducible generator run.
// Two runs with the same RunKey and identical settings
// MUST produce bit-for-bit identical events.
type RunKey uint64

// NewRunKey creates a RunKey from a seed value.
func NewRunKey(seed int64) RunKey {
	return RunKey(uint64(seed))
}

// === Subsystem Constants ===

const (
	// SubsystemHardProcess is the RNG subsystem for hard-process phase space.
	// Uses the master seed directly so a given --seed always reproduces the same
	// sequence of hard scatterings.
	SubsystemHardProcess = "hardprocess"

	// SubsystemMaximization is the RNG subsystem for the phase-space search at init.
	SubsystemMaximization = "maximization"

	// SubsystemHadronization is the RNG subsystem for parton fragmentation and decays.
	SubsystemHadronization = "hadronization"

	// SubsystemUnderlyingEvent is the RNG subsystem for soft multi-parton activity.
	SubsystemUnderlyingEvent = "underlying_event"
)

// SubsystemParton returns the subsystem name for outgoing parton N.
func SubsystemParton(id int) string {
	return fmt.Sprintf("parton_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemHardProcess: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// The returned *rand.Rand values implement rand.Source and can be used directly
// as the Src of gonum distributions.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        RunKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a RunKey.
func NewPartitionedRNG(key RunKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derivedSeed := uint64(p.key)
	if name != SubsystemHardProcess {
		derivedSeed ^= fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the RunKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() RunKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
