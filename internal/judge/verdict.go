package judge

import "strconv"

// Verdict is the reduced headline outcome of a full batch of test cases.
type Verdict string

const (
	VerdictAccepted          Verdict = "accepted"
	VerdictWrongAnswer       Verdict = "wrong answer"
	VerdictTimeLimitExceeded Verdict = "time limit exceeded"
	VerdictCompilationError  Verdict = "compilation error"
	VerdictRuntimeError      Verdict = "runtime error"
	VerdictInternalError     Verdict = "internal error"
)

// Title returns the display form of the verdict, e.g. "Wrong Answer".
func (v Verdict) Title() string {
	switch v {
	case VerdictAccepted:
		return "Accepted"
	case VerdictWrongAnswer:
		return "Wrong Answer"
	case VerdictTimeLimitExceeded:
		return "Time Limit Exceeded"
	case VerdictCompilationError:
		return "Compilation Error"
	case VerdictRuntimeError:
		return "Runtime Error"
	default:
		return "Internal Error"
	}
}

// Verdict classifies a terminal status into the headline verdict set.
func (s Status) Verdict() Verdict {
	switch {
	case s == StatusAccepted:
		return VerdictAccepted
	case s == StatusWrongAnswer:
		return VerdictWrongAnswer
	case s == StatusTimeLimitExceeded:
		return VerdictTimeLimitExceeded
	case s == StatusCompilationError:
		return VerdictCompilationError
	case s >= StatusRuntimeErrorSIGSEGV && s <= StatusRuntimeErrorOther:
		return VerdictRuntimeError
	default:
		return VerdictInternalError
	}
}

// Outcome is the aggregate of one judged batch.
type Outcome struct {
	Verdict      Verdict
	Passed       int
	Runtime      float64 // sum of accepted-case times, seconds
	MemoryKB     int     // max accepted-case memory
	ErrorMessage string  // empty when accepted
}

// Accepted reports whether every case in the batch passed.
func (o Outcome) Accepted() bool {
	return o.Verdict == VerdictAccepted
}

// Aggregate reduces per-case results to a single outcome. The first
// non-accepted result fixes the verdict and error message; accepted cases keep
// contributing to the pass count, runtime sum, and memory peak regardless of
// position, so callers get the full pass count even on failure.
func Aggregate(results []TestResult) Outcome {
	out := Outcome{Verdict: VerdictAccepted}
	for _, r := range results {
		if r.StatusID == StatusAccepted {
			out.Passed++
			if t, err := strconv.ParseFloat(r.Time, 64); err == nil {
				out.Runtime += t
			}
			if r.MemoryKB > out.MemoryKB {
				out.MemoryKB = r.MemoryKB
			}
			continue
		}
		if out.Verdict != VerdictAccepted {
			continue
		}
		out.Verdict = r.StatusID.Verdict()
		out.ErrorMessage = r.Diagnostic()
	}
	return out
}

// Diagnostic returns the most specific failure text available for a result:
// stderr, then compiler output, then the generic status message.
func (r TestResult) Diagnostic() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	if r.CompileOutput != "" {
		return r.CompileOutput
	}
	return r.StatusID.Message()
}
