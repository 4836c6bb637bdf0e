package generator

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// lambdaQCD sets the one-loop running of alpha_s (GeV, nf = 5).
	lambdaQCD = 0.2
	// sigmaNorm converts the toy matrix element into millibarn.
	sigmaNorm = 80.0
)

// subprocess is one 2 -> 2 QCD channel.
type subprocess struct {
	code     int
	name     string
	flag     string  // enabling setting
	coupling float64 // relative colour-factor strength
	lum      func(x1, x2 float64) float64
}

// xg and xq are toy momentum densities x*f(x) for gluons and valence quarks.
func xg(x float64) float64 { return math.Pow(1-x, 5) }
func xq(x float64) float64 { return math.Sqrt(x) * math.Pow(1-x, 3) }

var allSubprocesses = []subprocess{
	{code: 111, name: "g g -> g g", flag: "HardQCD:gg2gg", coupling: 1.0,
		lum: func(x1, x2 float64) float64 { return xg(x1) * xg(x2) }},
	{code: 113, name: "q g -> q g", flag: "HardQCD:qg2qg", coupling: 0.45,
		lum: func(x1, x2 float64) float64 { return xq(x1)*xg(x2) + xg(x1)*xq(x2) }},
	{code: 114, name: "q q(bar)' -> q q(bar)'", flag: "HardQCD:qq2qq", coupling: 0.2,
		lum: func(x1, x2 float64) float64 { return xq(x1) * xq(x2) }},
}

// alphaS is the one-loop strong coupling at scale q (GeV).
func alphaS(q float64) float64 {
	return 12 * math.Pi / (23 * math.Log(q*q/(lambdaQCD*lambdaQCD)))
}

// phaseSpacePoint is one trial of the hard-scattering kinematics.
type phaseSpacePoint struct {
	pTHat, phi float64
	y3, y4     float64
	x1, x2     float64
	weights    []float64 // per enabled subprocess, mb
	total      float64
}

// hardProcess samples 2 -> 2 kinematics from a pTHat^-4 proposal with
// uniform rapidities and returns weights whose mean is the cross section.
type hardProcess struct {
	eCM          float64
	pTMin, pTMax float64
	yMax         float64
	procs        []subprocess
	invMin3      float64 // pTMin^-3
	invMax3      float64 // pTMax^-3
	volume       float64 // integral of the proposal over pTHat, y3, y4
}

func newHardProcess(eCM, pTMin, pTMax float64, procs []subprocess) *hardProcess {
	if pTMax <= 0 || pTMax > eCM/2 {
		pTMax = eCM / 2
	}
	hp := &hardProcess{
		eCM:     eCM,
		pTMin:   pTMin,
		pTMax:   pTMax,
		yMax:    math.Acosh(eCM / (2 * pTMin)),
		procs:   procs,
		invMin3: math.Pow(pTMin, -3),
		invMax3: math.Pow(pTMax, -3),
	}
	hp.volume = (hp.invMin3 - hp.invMax3) / 3 * (2 * hp.yMax) * (2 * hp.yMax)
	return hp
}

// sample draws one phase-space point and evaluates its weights.
func (hp *hardProcess) sample(rng *rand.Rand) phaseSpacePoint {
	u := rng.Float64()
	pt := math.Pow(hp.invMin3-u*(hp.invMin3-hp.invMax3), -1.0/3.0)
	y := distuv.Uniform{Min: -hp.yMax, Max: hp.yMax, Src: rng}
	y3 := y.Rand()
	y4 := y.Rand()
	azimuth := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}
	return hp.evaluate(pt, y3, y4, azimuth.Rand())
}

func (hp *hardProcess) evaluate(pt, y3, y4, phi float64) phaseSpacePoint {
	p := phaseSpacePoint{pTHat: pt, phi: phi, y3: y3, y4: y4, weights: make([]float64, len(hp.procs))}
	xT := 2 * pt / hp.eCM
	p.x1 = 0.5 * xT * (math.Exp(y3) + math.Exp(y4))
	p.x2 = 0.5 * xT * (math.Exp(-y3) + math.Exp(-y4))
	if p.x1 >= 1 || p.x2 >= 1 {
		return p
	}
	as := alphaS(pt)
	common := sigmaNorm * as * as * pt * hp.volume
	for i, proc := range hp.procs {
		w := common * proc.coupling * proc.lum(p.x1, p.x2)
		p.weights[i] = w
		p.total += w
	}
	return p
}

// choose picks a subprocess index with probability proportional to its weight.
func (p *phaseSpacePoint) choose(rng *rand.Rand) int {
	r := rng.Float64() * p.total
	for i, w := range p.weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return len(p.weights) - 1
}
