package generator

// PDG codes used by the generator.
const (
	idDown    = 1
	idUp      = 2
	idStrange = 3
	idGluon   = 21
	idMuon    = 13
	idNuE     = 12
	idNuMu    = 14
	idNuTau   = 16
	idPhoton  = 22
	idPi0     = 111
	idPiPlus  = 211
	idKLong   = 130
	idKPlus   = 321
	idDPlus   = 411
	idNeutron = 2112
	idProton  = 2212
	idSystem  = 90
)

// Status codes: negative entries are not final.
const (
	statusSystem   = -11
	statusBeam     = -12
	statusIncoming = -21
	statusOutgoing = -23
	statusFragment = -71 // outgoing parton that has been fragmented
	statusParton   = 23  // outgoing parton left final when hadronization is off
	statusUEParton = 33  // soft parton left final when hadronization is off
	statusJetHad   = 83
	statusUEHad    = 84
	statusDecayed  = -91
	statusDaughter = 91
)

type particleData struct {
	name    string
	mass    float64 // GeV
	visible bool
}

// particleTable is keyed by |PDG code|.
var particleTable = map[int]particleData{
	idDown:     {"d", 0.33, true},
	idUp:       {"u", 0.33, true},
	idStrange:  {"s", 0.5, true},
	idGluon:    {"g", 0, true},
	idMuon:     {"mu-", 0.10566, true},
	idNuE:      {"nu_e", 0, false},
	idNuMu:     {"nu_mu", 0, false},
	idNuTau:    {"nu_tau", 0, false},
	idPhoton:   {"gamma", 0, true},
	idPi0:      {"pi0", 0.13498, true},
	idPiPlus:   {"pi+", 0.13957, true},
	idKLong:    {"K_L0", 0.49761, true},
	idKPlus:    {"K+", 0.49368, true},
	idDPlus:    {"D+", 1.86966, true},
	idNeutron:  {"n0", 0.93957, true},
	idProton:   {"p+", 0.93827, true},
	idSystem:   {"(system)", 0, false},
	1000022:    {"~chi_10", 0, false},
	1000039:    {"~Gravitino", 0, false},
	5000039:    {"Graviton*", 0, false},
}

// beamHadrons are the accepted beam particles.
var beamHadrons = map[int]bool{
	idProton: true, -idProton: true,
	idNeutron: true, -idNeutron: true,
}

func abs(id int) int {
	if id < 0 {
		return -id
	}
	return id
}

// massOf returns the nominal mass of a species; 0 for unknown codes.
func massOf(id int) float64 {
	return particleTable[abs(id)].mass
}

// isVisible reports whether a species would be detected. Unknown codes are
// treated as visible.
func isVisible(id int) bool {
	pd, ok := particleTable[abs(id)]
	if !ok {
		return true
	}
	return pd.visible
}

// nameOf returns a printable name, prefixing anti-particles with "anti-".
func nameOf(id int) string {
	pd, ok := particleTable[abs(id)]
	if !ok {
		return "unknown"
	}
	if id < 0 {
		return "anti-" + pd.name
	}
	return pd.name
}
