package judge

// Status is the judging service's per-case status id. Ids 1 and 2 are
// transient; everything from Accepted up is terminal.
type Status int

const (
	StatusInQueue Status = iota + 1
	StatusProcessing
	StatusAccepted
	StatusWrongAnswer
	StatusTimeLimitExceeded
	StatusCompilationError
	StatusRuntimeErrorSIGSEGV
	StatusRuntimeErrorSIGXFSZ
	StatusRuntimeErrorSIGFPE
	StatusRuntimeErrorSIGABRT
	StatusRuntimeErrorNZEC
	StatusRuntimeErrorOther
	StatusInternalError
	StatusExecFormatError
)

// Terminal reports whether the case finished executing.
func (s Status) Terminal() bool {
	return s >= StatusAccepted
}

// Message returns the user-facing description of a status.
func (s Status) Message() string {
	switch s {
	case StatusInQueue:
		return "In Queue"
	case StatusProcessing:
		return "Processing"
	case StatusAccepted:
		return "Accepted"
	case StatusWrongAnswer:
		return "Wrong Answer"
	case StatusTimeLimitExceeded:
		return "Time Limit Exceeded"
	case StatusCompilationError:
		return "Compilation Error"
	case StatusRuntimeErrorSIGSEGV:
		return "Runtime Error (SIGSEGV)"
	case StatusRuntimeErrorSIGXFSZ:
		return "Runtime Error (SIGXFSZ)"
	case StatusRuntimeErrorSIGFPE:
		return "Runtime Error (SIGFPE)"
	case StatusRuntimeErrorSIGABRT:
		return "Runtime Error (SIGABRT)"
	case StatusRuntimeErrorNZEC:
		return "Runtime Error (NZEC)"
	case StatusRuntimeErrorOther:
		return "Runtime Error (Other)"
	case StatusInternalError:
		return "Internal Error"
	case StatusExecFormatError:
		return "Exec Format Error"
	default:
		return "Unknown Status"
	}
}
