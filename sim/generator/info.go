package generator

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// ProcessStat accumulates the Monte Carlo estimate of one subprocess.
type ProcessStat struct {
	Code     int
	Name     string
	Accepted int64   // events of this subprocess handed out by Next
	SumW     float64 // sum of trial weights, mb
	SumW2    float64
}

// Info holds the run statistics of a generator: trial and event counts,
// cross-section estimates and a tally of error and warning messages.
type Info struct {
	Tried    int64 // phase-space points sampled during generation
	Accepted int64 // events returned by Next
	Failed   int64 // Next calls that ran out of tries

	procs    []*ProcessStat
	messages map[string]int
}

func newInfo(procs []subprocess) *Info {
	info := &Info{messages: make(map[string]int)}
	for _, p := range procs {
		info.procs = append(info.procs, &ProcessStat{Code: p.code, Name: p.name})
	}
	return info
}

func (info *Info) recordTrial(pt *phaseSpacePoint) {
	info.Tried++
	for i, w := range pt.weights {
		ps := info.procs[i]
		ps.SumW += w
		ps.SumW2 += w * w
	}
}

func (info *Info) recordAccepted(proc int) {
	info.Accepted++
	info.procs[proc].Accepted++
}

func (info *Info) addMessage(msg string) {
	info.messages[msg]++
}

// Processes returns a snapshot of the per-subprocess statistics.
func (info *Info) Processes() []ProcessStat {
	out := make([]ProcessStat, len(info.procs))
	for i, p := range info.procs {
		out[i] = *p
	}
	return out
}

// Messages returns a copy of the error/warning tally.
func (info *Info) Messages() map[string]int {
	out := make(map[string]int, len(info.messages))
	for k, v := range info.messages {
		out[k] = v
	}
	return out
}

// estimate returns the mean weight and its statistical error over n trials.
func estimate(sumW, sumW2 float64, n int64) (float64, float64) {
	if n == 0 {
		return 0, 0
	}
	fn := float64(n)
	mean := sumW / fn
	variance := sumW2/fn - mean*mean
	if variance < 0 || n < 2 {
		return mean, 0
	}
	return mean, math.Sqrt(variance / fn)
}

// ProcessSigma returns the cross-section estimate of one subprocess in mb.
func (info *Info) ProcessSigma(code int) (sigma, sigmaErr float64) {
	for _, p := range info.procs {
		if p.Code == code {
			return estimate(p.SumW, p.SumW2, info.Tried)
		}
	}
	return 0, 0
}

// SigmaGen returns the total cross-section estimate in mb. Per-trial totals
// are not stored, so the error adds the subprocess errors in quadrature.
func (info *Info) SigmaGen() (sigma, sigmaErr float64) {
	var sumErr2 float64
	for _, p := range info.procs {
		s, e := estimate(p.SumW, p.SumW2, info.Tried)
		sigma += s
		sumErr2 += e * e
	}
	return sigma, math.Sqrt(sumErr2)
}

// WriteStat prints the cross-section table followed by the message tally.
func (info *Info) WriteStat(w io.Writer) error {
	bw := &errWriter{w: w}
	bw.printf("=== Generator Statistics ===\n")
	bw.printf("%-28s %5s %10s %10s %14s %14s\n", "Subprocess", "Code", "Tried", "Accepted", "Sigma (mb)", "Error (mb)")
	for _, p := range info.procs {
		s, e := estimate(p.SumW, p.SumW2, info.Tried)
		bw.printf("%-28s %5d %10d %10d %14.6e %14.6e\n", p.Name, p.Code, info.Tried, p.Accepted, s, e)
	}
	s, e := info.SigmaGen()
	bw.printf("%-28s %5s %10d %10d %14.6e %14.6e\n", "sum", "", info.Tried, info.Accepted, s, e)
	bw.printf("Failed events: %d\n", info.Failed)

	bw.printf("=== Error and Warning Statistics ===\n")
	if len(info.messages) == 0 {
		bw.printf("no errors or warnings to report\n")
		return bw.err
	}
	keys := make([]string, 0, len(info.messages))
	for k := range info.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	bw.printf("%8s  %s\n", "times", "message")
	for _, k := range keys {
		bw.printf("%8d  %s\n", info.messages[k], k)
	}
	return bw.err
}

// errWriter keeps the first write error so callers can print freely.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
