// Package generator implements a toy proton-proton event generator for
// hard QCD 2 -> 2 scattering.
//
// It is configured through a settings database of "Key = value" strings
// (Beams:eCM, HardQCD:all, PhaseSpace:pTHatMin, ...). Init validates the
// settings and locates the maximum phase-space weight. Next then returns
// unweighted events by accept/reject. Each event record holds the system,
// the beams, the hard-scattering partons, their fragmentation products and
// a soft underlying event. Cross sections are estimated from the trial
// weights and printed by Stat.
//
// Random numbers come from sim.PartitionedRNG so that the hard process,
// fragmentation, decays and underlying event draw from independent
// streams, all reproducible from one seed.
package generator
