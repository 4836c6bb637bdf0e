package generator

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/ppjets/sim"
)

const (
	// defaultSeed is used when Random:setSeed is off or Random:seed is negative.
	defaultSeed = 19780503
	// maximizationTrials is the number of phase-space points sampled at Init
	// to locate the maximum weight.
	maximizationTrials = 5000
	// maximumSafety inflates the observed maximum weight.
	maximumSafety = 1.1
	// minECM is the lowest accepted collision energy (GeV).
	minECM = 10.
	// minPTHat is the lowest accepted hard-scattering pT (GeV).
	minPTHat = 1.
)

var (
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("generator already initialized")

	// ErrInvalidSetup wraps every Init failure caused by the settings.
	ErrInvalidSetup = errors.New("invalid generator setup")
)

// Generator is a toy hard-QCD event generator driven by a Pythia-style
// settings database. Call ReadString for each setting, Init once, then Next
// for every event.
//
// Thread-safety: NOT thread-safe.
type Generator struct {
	settings *Settings
	info     *Info
	out      io.Writer // destination of Stat

	initCalled  bool
	initialized bool

	rng         *sim.PartitionedRNG
	hard        *hardProcess
	had         *hadronizer
	wMax        float64
	eCM         float64
	idA, idB    int
	hadronize   bool
	mpi         bool
	maxTries    int
	numberCount int
}

var _ sim.EventSource = (*Generator)(nil)

// New returns a generator with all settings at their defaults.
func New() *Generator {
	return &Generator{
		settings: NewSettings(),
		info:     newInfo(nil),
		out:      os.Stdout,
	}
}

// Settings exposes the settings database.
func (g *Generator) Settings() *Settings { return g.settings }

// Info exposes the run statistics.
func (g *Generator) Info() *Info { return g.info }

// SetOutput redirects Stat, which prints to stdout by default.
func (g *Generator) SetOutput(w io.Writer) { g.out = w }

// ReadString applies one "Key = value" setting line.
func (g *Generator) ReadString(line string) error {
	if err := g.settings.ReadString(line); err != nil {
		g.info.addMessage("Warning in Settings::readString: " + err.Error())
		logrus.Warnf("generator: %v", err)
		return err
	}
	return nil
}

// ReadLines applies every line in order and reports all rejected lines.
func (g *Generator) ReadLines(lines []string) error {
	var errs []error
	for _, l := range lines {
		if err := g.ReadString(l); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Generator) setupError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	g.info.addMessage("Abort from Generator::Init: " + msg)
	return fmt.Errorf("%w: %s", ErrInvalidSetup, msg)
}

// Init validates the settings, seeds the random streams and searches the
// phase space for the maximum weight. It may be called only once.
func (g *Generator) Init() error {
	if g.initCalled {
		return ErrAlreadyInitialized
	}
	g.initCalled = true

	s := g.settings
	if s.ReadingFailed() {
		return g.setupError("some user settings did not make sense")
	}

	g.idA, g.idB = s.Mode("Beams:idA"), s.Mode("Beams:idB")
	for _, id := range []int{g.idA, g.idB} {
		if !beamHadrons[id] {
			return g.setupError("beam id %d is not a known hadron", id)
		}
	}

	g.eCM = s.Parm("Beams:eCM")
	if g.eCM < minECM {
		return g.setupError("Beams:eCM = %g is below %g GeV", g.eCM, minECM)
	}

	var procs []subprocess
	for _, p := range allSubprocesses {
		if s.Flag("HardQCD:all") || s.Flag(p.flag) {
			procs = append(procs, p)
		}
	}
	if len(procs) == 0 {
		return g.setupError("no process switched on")
	}

	pTMin, pTMax := s.Parm("PhaseSpace:pTHatMin"), s.Parm("PhaseSpace:pTHatMax")
	if pTMin < minPTHat {
		return g.setupError("PhaseSpace:pTHatMin = %g is below %g GeV", pTMin, minPTHat)
	}
	if pTMax >= 0 && pTMax <= pTMin {
		return g.setupError("PhaseSpace:pTHatMax = %g is not above pTHatMin = %g", pTMax, pTMin)
	}
	if 2*pTMin >= g.eCM {
		return g.setupError("PhaseSpace:pTHatMin = %g leaves no phase space at eCM = %g", pTMin, g.eCM)
	}

	g.maxTries = s.Mode("Next:maxTries")
	if g.maxTries < 0 {
		return g.setupError("Next:maxTries = %d is negative", g.maxTries)
	}
	g.numberCount = s.Mode("Next:numberCount")
	g.hadronize = s.Flag("HadronLevel:all")
	g.mpi = s.Flag("PartonLevel:MPI")

	seed := g.seed()
	g.rng = sim.NewPartitionedRNG(sim.NewRunKey(seed))
	g.hard = newHardProcess(g.eCM, pTMin, pTMax, procs)
	g.had = &hadronizer{rng: g.rng}
	messages := g.info.messages
	g.info = newInfo(procs)
	g.info.messages = messages

	if err := g.maximize(); err != nil {
		return err
	}

	logrus.Infof("generator: initialized %s-%s at eCM = %g GeV, seed %d, %d subprocesses", nameOf(g.idA), nameOf(g.idB), g.eCM, seed, len(procs))
	for _, line := range s.Changed() {
		logrus.Debugf("generator: changed setting %s", line)
	}
	g.initialized = true
	return nil
}

func (g *Generator) seed() int64 {
	s := g.settings
	if !s.Flag("Random:setSeed") {
		return defaultSeed
	}
	seed := int64(s.Mode("Random:seed"))
	switch {
	case seed < 0:
		return defaultSeed
	case seed == 0:
		return time.Now().UnixNano()
	}
	return seed
}

// maximize samples the phase space to set the acceptance ceiling.
func (g *Generator) maximize() error {
	rng := g.rng.ForSubsystem(sim.SubsystemMaximization)
	weights := make([]float64, maximizationTrials)
	var wMax float64
	for i := range weights {
		pt := g.hard.sample(rng)
		weights[i] = pt.total
		wMax = math.Max(wMax, pt.total)
	}
	if wMax <= 0 {
		return g.setupError("no phase-space point with positive weight")
	}
	g.wMax = maximumSafety * wMax

	mean, std := stat.MeanStdDev(weights, nil)
	logrus.Infof("generator: maximization over %d points: mean weight %.4g mb (std %.4g), maximum %.4g mb, expected efficiency %.3f",
		maximizationTrials, mean, std, g.wMax, mean/g.wMax)
	return nil
}

// Next generates one unweighted event. Running out of tries returns an error
// wrapping sim.ErrEventFailed.
func (g *Generator) Next() (*sim.Event, error) {
	if !g.initialized {
		return nil, sim.ErrNotInitialized
	}

	rng := g.rng.ForSubsystem(sim.SubsystemHardProcess)
	for try := 0; try < g.maxTries; try++ {
		pt := g.hard.sample(rng)
		g.info.recordTrial(&pt)
		if pt.total <= 0 {
			continue
		}
		if pt.total > g.wMax {
			g.info.addMessage("Warning in Generator::Next: weight above maximum")
			logrus.Warnf("generator: weight %.4g above maximum %.4g, raising maximum", pt.total, g.wMax)
			g.wMax = pt.total
		}
		if rng.Float64()*g.wMax > pt.total {
			continue
		}

		proc := pt.choose(rng)
		ev := g.buildEvent(&pt, proc)
		ev.Number = int(g.info.Accepted)
		g.info.recordAccepted(proc)
		if g.numberCount > 0 && g.info.Accepted%int64(g.numberCount) == 0 {
			logrus.Infof("generator: %d events have been generated", g.info.Accepted)
		}
		return ev, nil
	}

	g.info.Failed++
	g.info.addMessage("Error in Generator::Next: reached end of tries without accepted event")
	return nil, fmt.Errorf("no accepted phase-space point in %d tries: %w", g.maxTries, sim.ErrEventFailed)
}

// buildEvent fills the particle record for an accepted phase-space point:
// system, beams, incoming and outgoing partons, then hadrons.
func (g *Generator) buildEvent(pt *phaseSpacePoint, proc int) *sim.Event {
	sp := g.hard.procs[proc]
	ev := &sim.Event{Process: sp.code, PTHat: pt.pTHat, Particles: make([]sim.Particle, 0, 128)}

	ev.Append(sim.Particle{ID: idSystem, Status: statusSystem, Momentum: sim.FourMomentum{E: g.eCM}, Mass: g.eCM})
	eBeam := g.eCM / 2
	beamA := g.appendParton(ev, g.idA, statusBeam, 0, beamMomentum(eBeam, massOf(g.idA), 1))
	beamB := g.appendParton(ev, g.idB, statusBeam, 0, beamMomentum(eBeam, massOf(g.idB), -1))

	in1, in2, out1, out2 := g.flavours(sp.code)
	i1 := g.appendParton(ev, in1, statusIncoming, beamA, sim.FourMomentum{Pz: pt.x1 * eBeam, E: pt.x1 * eBeam})
	i2 := g.appendParton(ev, in2, statusIncoming, beamB, sim.FourMomentum{Pz: -pt.x2 * eBeam, E: pt.x2 * eBeam})

	final := statusOutgoing
	if !g.hadronize {
		final = statusParton
	}
	o1 := g.appendParton(ev, out1, final, i1, fromPtEtaPhi(pt.pTHat, pt.y3, pt.phi, 0))
	o2 := g.appendParton(ev, out2, final, i1, fromPtEtaPhi(pt.pTHat, pt.y4, pt.phi+math.Pi, 0))
	ev.Particles[o1].Mother2 = i2
	ev.Particles[o2].Mother2 = i2

	if g.hadronize {
		g.had.fragment(ev, o1, 0)
		g.had.fragment(ev, o2, 1)
	}
	if g.mpi {
		g.had.underlyingEvent(ev, beamA, beamB, g.hadronize)
	}
	return ev
}

func (g *Generator) appendParton(ev *sim.Event, id, status, mother int, p sim.FourMomentum) int {
	return ev.Append(sim.Particle{
		ID:       id,
		Status:   status,
		Mother1:  mother,
		Momentum: p,
		Mass:     massOf(id),
		Visible:  isVisible(id),
	})
}

func beamMomentum(e, m, dir float64) sim.FourMomentum {
	return sim.FourMomentum{Pz: dir * math.Sqrt(e*e-m*m), E: e}
}

// flavours assigns parton ids to the incoming and outgoing legs.
func (g *Generator) flavours(code int) (in1, in2, out1, out2 int) {
	rng := g.rng.ForSubsystem(sim.SubsystemHardProcess)
	quark := func() int {
		if rng.Float64() < 2.0/3.0 {
			return idUp
		}
		return idDown
	}
	switch code {
	case 113:
		q := quark()
		if rng.Float64() < 0.5 {
			return q, idGluon, q, idGluon
		}
		return idGluon, q, idGluon, q
	case 114:
		q1, q2 := quark(), quark()
		return q1, q2, q1, q2
	}
	return idGluon, idGluon, idGluon, idGluon
}

// Stat prints the run statistics to stdout.
func (g *Generator) Stat() {
	if err := g.info.WriteStat(g.out); err != nil {
		logrus.Warnf("generator: writing statistics: %v", err)
	}
}
