package sim

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

// === RunKey Tests ===

func TestRunKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewRunKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewRunKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewRunKey(42))
	rng2 := NewPartitionedRNG(NewRunKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemHadronization).Float64()
		v2 := rng2.ForSubsystem(SubsystemHadronization).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// Drawing from subsystem A doesn't affect subsystem B
	rngA := NewPartitionedRNG(NewRunKey(42))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemHardProcess).Float64()
	}
	aFirst := rngA.ForSubsystem(SubsystemUnderlyingEvent).Float64()

	fresh := NewPartitionedRNG(NewRunKey(42))
	want := fresh.ForSubsystem(SubsystemUnderlyingEvent).Float64()

	if aFirst != want {
		t.Errorf("underlying event first value = %v, want %v (isolation broken)", aFirst, want)
	}
}

func TestPartitionedRNG_HardProcessUsesMasterSeed(t *testing.T) {
	seed := int64(42)
	rng := NewPartitionedRNG(NewRunKey(seed))
	hard := rng.ForSubsystem(SubsystemHardProcess)
	direct := rand.New(rand.NewSource(uint64(seed)))

	for i := 0; i < 10; i++ {
		if got, want := hard.Float64(), direct.Float64(); got != want {
			t.Errorf("Value %d: hard-process RNG = %v, direct RNG = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewRunKey(42))
	if rng.ForSubsystem(SubsystemHardProcess) != rng.ForSubsystem(SubsystemHardProcess) {
		t.Error("ForSubsystem returned different instances for same name")
	}
	if len(rng.subsystems) != 1 {
		t.Errorf("have %d subsystems, want 1", len(rng.subsystems))
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	rng := NewPartitionedRNG(NewRunKey(12345))
	if rng.Key() != RunKey(12345) {
		t.Errorf("Key() = %v, want 12345", rng.Key())
	}
}

func TestFnv1a64_DistinctSubsystems(t *testing.T) {
	names := []string{
		SubsystemHardProcess,
		SubsystemMaximization,
		SubsystemHadronization,
		SubsystemUnderlyingEvent,
		SubsystemParton(0),
		SubsystemParton(1),
		"",
	}

	hashes := make(map[uint64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func TestSubsystemParton(t *testing.T) {
	if got := SubsystemParton(3); got != "parton_3" {
		t.Errorf("SubsystemParton(3) = %q, want parton_3", got)
	}
}
