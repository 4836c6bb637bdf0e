package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/ppjets/sim/trace"
)

func testConfig(events int) RunConfig {
	cfg := DefaultRunConfig()
	cfg.Events = events
	return cfg
}

// dijetEvent has two well-separated visible clusters, one invisible neutrino
// and one decayed intermediate, all in a single record.
func dijetEvent() *Event {
	ev := &Event{}
	ev.Append(Particle{ID: 90, Status: -11})
	ev.Append(Particle{ID: 21, Status: -23, Momentum: massless(60, 0.5, 1.0), Visible: true})
	ev.Append(particle(211, 30, 0.5, 1.0, true))
	ev.Append(particle(-211, 25, 0.52, 1.02, true))
	ev.Append(particle(14, 40, 0.5, 1.0, false))
	ev.Append(Particle{ID: 111, Status: -91, Momentum: massless(10, 0.5, 1.0), Visible: true})
	return ev
}

func TestExecute_InitCalledOnceBeforeNext(t *testing.T) {
	// GIVEN a healthy source
	src := newFakeSource()
	sink := newFakeSink()

	// WHEN the pipeline runs 5 events
	_, err := Execute(src, &fakeClusterer{}, sink, testConfig(5), nil)
	require.NoError(t, err)

	// THEN init is the first call and happens once
	require.NotEmpty(t, src.calls)
	assert.Equal(t, "init", src.calls[0])
	assert.Equal(t, 1, src.count("init"))
	assert.Equal(t, 5, src.count("next"))
	assert.Equal(t, 1, src.count("stat"))
	assert.Equal(t, "stat", src.calls[len(src.calls)-1], "statistics are printed last")
}

func TestExecute_InitFailure_AbortsBeforeLoop(t *testing.T) {
	// GIVEN a source whose initialization fails
	src := newFakeSource()
	src.initErr = errors.New("no process switched on")
	sink := newFakeSink()

	// WHEN executed
	_, err := Execute(src, &fakeClusterer{}, sink, testConfig(10), nil)

	// THEN the error surfaces and nothing else happens
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no process switched on")
	assert.Equal(t, 0, src.count("next"))
	assert.Equal(t, 0, src.count("stat"))
	assert.Equal(t, 0, sink.writes)
	assert.Empty(t, sink.hists, "histograms are booked after a successful init")
}

func TestExecute_InvalidConfig_Rejected(t *testing.T) {
	src := newFakeSource()
	cfg := testConfig(10)
	cfg.Jets.Radius = 0

	_, err := Execute(src, &fakeClusterer{}, newFakeSink(), cfg, nil)

	require.Error(t, err)
	assert.Empty(t, src.calls)
}

func TestExecute_ExactlyNEventsRequested_RegardlessOfFailures(t *testing.T) {
	// GIVEN a source where every other event fails
	src := newFakeSource(dijetEvent(), nil)

	// WHEN 1000 events are requested
	m, err := Execute(src, &fakeClusterer{}, newFakeSink(), testConfig(1000), nil)
	require.NoError(t, err)

	// THEN exactly 1000 generator calls were made
	assert.Equal(t, 1000, src.count("next"))
	assert.Equal(t, 1000, m.EventsRequested)
	assert.Equal(t, 500, m.EventsGenerated)
	assert.Equal(t, 500, m.EventsFailed)
}

func TestExecute_BooksSixHistogramsWithFixedBinning(t *testing.T) {
	// Repeated runs must book identical binning.
	for run := 0; run < 2; run++ {
		sink := newFakeSink()
		_, err := Execute(newFakeSource(), &fakeClusterer{}, sink, testConfig(3), nil)
		require.NoError(t, err)

		require.Equal(t, []string{
			HistJetPt, HistJetEta, HistJetPhi,
			HistConstituentPt, HistConstituentEta, HistConstituentPhi,
		}, sink.order)
		for _, spec := range DefaultHistograms {
			assert.Equal(t, spec, sink.hists[spec.Name].spec, "run %d", run)
		}
	}
}

func TestExecute_ZeroEvents_WritesEmptyHistograms(t *testing.T) {
	// GIVEN nEvents = 0
	src := newFakeSource()
	sink := newFakeSink()

	// WHEN executed
	m, err := Execute(src, &fakeClusterer{}, sink, testConfig(0), nil)
	require.NoError(t, err)

	// THEN the loop body never runs, yet all six histograms are written once
	assert.Equal(t, 0, src.count("next"))
	assert.Equal(t, 1, sink.writes)
	assert.Len(t, sink.hists, 6)
	for name := range sink.hists {
		assert.Zero(t, sink.fills(name), name)
	}
	assert.Equal(t, 0, m.EventsRequested)
}

func TestExecute_WriteHappensAfterLoopOnce(t *testing.T) {
	src := newFakeSource(dijetEvent())
	sink := newFakeSink()
	nextAtWrite := -1
	sink.onWrite = func() { nextAtWrite = src.count("next") }

	_, err := Execute(src, &fakeClusterer{}, sink, testConfig(7), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, sink.writes)
	assert.Equal(t, 7, nextAtWrite, "no partial flush during the loop")
}

func TestExecute_WriteFailure_IsFatal(t *testing.T) {
	src := newFakeSource()
	sink := newFakeSink()
	sink.writeErr = errors.New("disk full")

	_, err := Execute(src, &fakeClusterer{}, sink, testConfig(2), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, src.count("stat"))
}

func TestAnalysis_OnlyFinalVisibleParticlesReachClustering(t *testing.T) {
	// GIVEN an event with intermediate and invisible entries
	src := newFakeSource(dijetEvent())
	cl := &fakeClusterer{}

	// WHEN one event is processed
	_, err := Execute(src, cl, newFakeSink(), testConfig(1), nil)
	require.NoError(t, err)

	// THEN only the two visible pions are clustered
	require.Len(t, cl.inputs, 1)
	ev := dijetEvent()
	assert.Equal(t, []FourMomentum{ev.Particles[2].Momentum, ev.Particles[3].Momentum}, cl.inputs[0])
}

func TestAnalysis_EmptyEvent_NoFills(t *testing.T) {
	// GIVEN an event with no final visible particles
	ev := &Event{}
	ev.Append(Particle{ID: 2212, Status: -12, Visible: true})
	ev.Append(particle(12, 50, 0, 1, false))
	sink := newFakeSink()

	// WHEN processed
	m, err := Execute(newFakeSource(ev), &fakeClusterer{}, sink, testConfig(1), nil)

	// THEN no error and no fills anywhere
	require.NoError(t, err)
	for name := range sink.hists {
		assert.Zero(t, sink.fills(name), name)
	}
	assert.Equal(t, 1, m.EventsGenerated)
	assert.Equal(t, 0, m.JetsFilled)
}

func TestAnalysis_OneJetThreeConstituents_FillCounts(t *testing.T) {
	// GIVEN a clusterer that returns one jet of three constituents
	cons := []FourMomentum{massless(10, 0, 1), massless(8, 0.1, 1.1), massless(5, -0.1, 0.9)}
	jet := Jet{Momentum: cons[0].Add(cons[1]).Add(cons[2]), Constituents: cons}
	cl := &fakeClusterer{jets: []Jet{jet}}
	sink := newFakeSink()

	// WHEN one event is processed
	_, err := Execute(newFakeSource(dijetEvent()), cl, sink, testConfig(1), nil)
	require.NoError(t, err)

	// THEN 1 fill per jet histogram and 3 per constituent histogram
	assert.Equal(t, 1, sink.fills(HistJetPt))
	assert.Equal(t, 1, sink.fills(HistJetEta))
	assert.Equal(t, 1, sink.fills(HistJetPhi))
	assert.Equal(t, 3, sink.fills(HistConstituentPt))
	assert.Equal(t, 3, sink.fills(HistConstituentEta))
	assert.Equal(t, 3, sink.fills(HistConstituentPhi))
	assert.InDelta(t, jet.Pt(), sink.hists[HistJetPt].fills[0], 1e-12)
	assert.InDelta(t, 10.0, sink.hists[HistConstituentPt].fills[0], 1e-9)
}

func TestAnalysis_FailedIteration_LeavesHistogramsUnchanged(t *testing.T) {
	// GIVEN a sequence good, failed, good
	sinkWithFailure := newFakeSink()
	src := newFakeSource(dijetEvent(), nil, dijetEvent())
	_, err := Execute(src, &fakeClusterer{}, sinkWithFailure, testConfig(3), nil)
	require.NoError(t, err)

	// AND the same sequence with the failed iteration removed
	sinkSkipped := newFakeSink()
	_, err = Execute(newFakeSource(dijetEvent(), dijetEvent()), &fakeClusterer{}, sinkSkipped, testConfig(2), nil)
	require.NoError(t, err)

	// THEN histogram contents are identical
	assert.Equal(t, sinkSkipped.snapshot(), sinkWithFailure.snapshot())
}

func TestAnalysis_FillsBoundedBySuccessfulEvents(t *testing.T) {
	src := newFakeSource(dijetEvent(), nil, nil, dijetEvent())
	sink := newFakeSink()

	m, err := Execute(src, &fakeClusterer{}, sink, testConfig(8), nil)
	require.NoError(t, err)

	// fakeClusterer yields at most one jet per event
	assert.LessOrEqual(t, sink.fills(HistJetPt), m.EventsGenerated)
	assert.Equal(t, m.JetsFilled, sink.fills(HistJetPt))
	assert.Equal(t, m.ConstituentsFilled, sink.fills(HistConstituentPt))
}

func TestAnalysis_NonRecoverableSourceError_StopsRun(t *testing.T) {
	src := newFakeSource(dijetEvent())
	src.fatalAt = 2
	sink := newFakeSink()

	m, err := Execute(src, &fakeClusterer{}, sink, testConfig(10), nil)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEventFailed))
	assert.Equal(t, 3, src.count("next"))
	assert.Equal(t, 0, sink.writes)
	assert.Equal(t, 2, m.EventsGenerated)
}

func TestAnalysis_ClusteringError_Propagates(t *testing.T) {
	cl := &fakeClusterer{err: errors.New("malformed input")}

	_, err := Execute(newFakeSource(dijetEvent()), cl, newFakeSink(), testConfig(3), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 0: clustering")
	assert.Contains(t, err.Error(), "malformed input")
}

func TestAnalysis_NextBeforeInit_Rejected(t *testing.T) {
	// GIVEN an analysis wired to a source that was never initialized
	src := newFakeSource(dijetEvent())
	hists, err := BookHistograms(newFakeSink())
	require.NoError(t, err)
	a := NewAnalysis(src, &fakeClusterer{}, hists, 20, nil)

	// WHEN run
	err = a.Run(1)

	// THEN the not-initialized error is fatal, not skipped
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInitialized))
	assert.Equal(t, 0, a.Metrics.EventsFailed)
}

func TestAnalysis_TraceRecordsEveryIteration(t *testing.T) {
	rt := trace.NewRunTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
	src := newFakeSource(dijetEvent(), nil)

	_, err := Execute(src, &fakeClusterer{}, newFakeSink(), testConfig(4), rt)
	require.NoError(t, err)

	require.Len(t, rt.Events, 4)
	assert.True(t, rt.Events[0].Generated)
	assert.Equal(t, 2, rt.Events[0].Inputs)
	assert.Equal(t, 1, rt.Events[0].Jets)
	assert.False(t, rt.Events[1].Generated)
	summary := trace.Summarize(rt)
	assert.Equal(t, 2, summary.FailedEvents)
}

func TestAnalysis_TraceLevelNone_RecordsNothing(t *testing.T) {
	rt := trace.NewRunTrace(trace.TraceConfig{Level: trace.TraceLevelNone})

	_, err := Execute(newFakeSource(dijetEvent()), &fakeClusterer{}, newFakeSink(), testConfig(4), rt)
	require.NoError(t, err)

	assert.Empty(t, rt.Events)
}
