package model

import "time"

type SubmissionStatus string

const (
	StatusPending           SubmissionStatus = "pending"
	StatusAccepted          SubmissionStatus = "accepted"
	StatusWrongAnswer       SubmissionStatus = "wrong answer"
	StatusTimeLimitExceeded SubmissionStatus = "time limit exceeded"
	StatusCompilationError  SubmissionStatus = "compilation error"
	StatusRuntimeError      SubmissionStatus = "runtime error"
	StatusInternalError     SubmissionStatus = "internal error"

	// StatusFailed marks a submission whose judging never finished, e.g. the
	// judging service was unreachable after the pending row was created.
	StatusFailed SubmissionStatus = "failed"
)

// Terminal reports whether the status is final. Pending submissions are still
// being judged (or were abandoned mid-flight) and must not be read as a result.
func (s SubmissionStatus) Terminal() bool {
	return s != StatusPending
}

type Submission struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	ProblemID       string           `json:"problemId"`
	Code            string           `json:"code"`
	Language        string           `json:"language"`
	Status          SubmissionStatus `json:"status"`
	TestCasesPassed int              `json:"testCasesPassed"`
	TestCasesTotal  int              `json:"testCasesTotal"`
	Runtime         float64          `json:"runtime"`
	MemoryKB        int              `json:"memory"`
	ErrorMessage    *string          `json:"errorMessage,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}
