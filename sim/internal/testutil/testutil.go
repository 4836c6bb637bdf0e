// Package testutil provides shared test infrastructure for the ppjets
// simulation packages: stdout capture, particle kinematics builders and
// tolerance assertions used across sim/ and its sub-packages.
package testutil

import (
	"bytes"
	"io"
	"math"
	"os"
	"testing"
)

// CaptureStdout runs fn with os.Stdout redirected and returns what it printed.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.Bytes()
	}()

	fn()
	_ = w.Close()
	os.Stdout = old
	return string(<-done)
}

// Massless returns (px, py, pz, E) of a massless particle with the given
// transverse momentum, pseudorapidity and azimuth.
func Massless(pt, eta, phi float64) (px, py, pz, e float64) {
	px = pt * math.Cos(phi)
	py = pt * math.Sin(phi)
	pz = pt * math.Sinh(eta)
	return px, py, pz, math.Sqrt(px*px + py*py + pz*pz)
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
