package trace

import "testing"

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"none", true},
		{"events", true},
		{"", true},
		{"decisions", false},
		{"EVENTS", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.want {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestRunTrace_Enabled(t *testing.T) {
	var nilTrace *RunTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must be disabled")
	}
	if NewRunTrace(TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("level none must be disabled")
	}
	if !NewRunTrace(TraceConfig{Level: TraceLevelEvents}).Enabled() {
		t.Error("level events must be enabled")
	}
}

func TestRunTrace_RecordEvent_Appends(t *testing.T) {
	rt := NewRunTrace(TraceConfig{Level: TraceLevelEvents})
	rt.RecordEvent(EventRecord{Index: 0, Generated: true})
	rt.RecordEvent(EventRecord{Index: 1})
	if len(rt.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(rt.Events))
	}
	if rt.Events[1].Index != 1 || rt.Events[1].Generated {
		t.Errorf("unexpected second record %+v", rt.Events[1])
	}
}
