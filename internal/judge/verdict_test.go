package judge

import (
	"math"
	"testing"
)

func TestAggregateAllAccepted(t *testing.T) {
	results := []TestResult{
		{StatusID: StatusAccepted, Time: "0.01", MemoryKB: 900},
		{StatusID: StatusAccepted, Time: "0.02", MemoryKB: 1200},
		{StatusID: StatusAccepted, Time: "0.015", MemoryKB: 1000},
	}
	out := Aggregate(results)

	if !out.Accepted() {
		t.Fatalf("expected accepted, got %q", out.Verdict)
	}
	if out.Passed != 3 {
		t.Errorf("passed = %d, want 3", out.Passed)
	}
	if math.Abs(out.Runtime-0.045) > 1e-9 {
		t.Errorf("runtime = %v, want sum 0.045", out.Runtime)
	}
	if out.MemoryKB != 1200 {
		t.Errorf("memory = %d, want max 1200", out.MemoryKB)
	}
	if out.ErrorMessage != "" {
		t.Errorf("unexpected error message %q", out.ErrorMessage)
	}
}

func TestAggregateFirstFailureFixesVerdict(t *testing.T) {
	results := []TestResult{
		{StatusID: StatusAccepted, Time: "0.01", MemoryKB: 500},
		{StatusID: StatusTimeLimitExceeded},
		{StatusID: StatusWrongAnswer, Stderr: "diff at line 3"},
		{StatusID: StatusAccepted, Time: "0.02", MemoryKB: 800},
	}
	out := Aggregate(results)

	if out.Verdict != VerdictTimeLimitExceeded {
		t.Fatalf("verdict = %q, want first failure to win", out.Verdict)
	}
	if out.ErrorMessage != "Time Limit Exceeded" {
		t.Errorf("error message = %q", out.ErrorMessage)
	}
	// accepted cases after the failure still count
	if out.Passed != 2 {
		t.Errorf("passed = %d, want 2", out.Passed)
	}
	if out.MemoryKB != 800 {
		t.Errorf("memory = %d, want 800", out.MemoryKB)
	}
}

func TestAggregateDiagnosticPrecedence(t *testing.T) {
	stderrOut := Aggregate([]TestResult{
		{StatusID: StatusRuntimeErrorNZEC, Stderr: "panic: index out of range", CompileOutput: "ignored"},
	})
	if stderrOut.ErrorMessage != "panic: index out of range" {
		t.Errorf("stderr should win, got %q", stderrOut.ErrorMessage)
	}

	compileOut := Aggregate([]TestResult{
		{StatusID: StatusCompilationError, CompileOutput: "main.cpp:3: expected ';'"},
	})
	if compileOut.ErrorMessage != "main.cpp:3: expected ';'" {
		t.Errorf("compile output should win, got %q", compileOut.ErrorMessage)
	}

	messageOut := Aggregate([]TestResult{
		{StatusID: StatusWrongAnswer},
	})
	if messageOut.ErrorMessage != "Wrong Answer" {
		t.Errorf("status message fallback, got %q", messageOut.ErrorMessage)
	}
}

func TestAggregateEmpty(t *testing.T) {
	out := Aggregate(nil)
	if !out.Accepted() || out.Passed != 0 {
		t.Errorf("empty batch should be vacuously accepted with 0 passed, got %+v", out)
	}
}

func TestAggregateUnparsableTime(t *testing.T) {
	out := Aggregate([]TestResult{
		{StatusID: StatusAccepted, Time: "", MemoryKB: 100},
		{StatusID: StatusAccepted, Time: "0.5", MemoryKB: 200},
	})
	if out.Passed != 2 {
		t.Errorf("passed = %d, want 2", out.Passed)
	}
	if out.Runtime != 0.5 {
		t.Errorf("runtime = %v, blank time must contribute nothing", out.Runtime)
	}
}

func TestVerdictTitle(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    string
	}{
		{VerdictAccepted, "Accepted"},
		{VerdictWrongAnswer, "Wrong Answer"},
		{VerdictTimeLimitExceeded, "Time Limit Exceeded"},
		{VerdictCompilationError, "Compilation Error"},
		{VerdictRuntimeError, "Runtime Error"},
		{VerdictInternalError, "Internal Error"},
		{Verdict("bogus"), "Internal Error"},
	}
	for _, tt := range tests {
		if got := tt.verdict.Title(); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.verdict, got, tt.want)
		}
	}
}
