package domain

type ExtensionClass struct {
	Name   string
	Module string
}

type ClassFailure struct {
	Class string
	Err   error
}

type EvictionFailure struct {
	Module string
	Err    error
}

type UnregisterReport struct {
	Identity         ModuleIdentity
	Unregistered     []string
	ClassFailures    []ClassFailure
	Evicted          []string
	EvictionFailures []EvictionFailure
}

func (r UnregisterReport) Empty() bool {
	return len(r.Unregistered) == 0 && len(r.ClassFailures) == 0 &&
		len(r.Evicted) == 0 && len(r.EvictionFailures) == 0
}

type OutcomeStatus string

const (
	OutcomeOK                OutcomeStatus = "ok"
	OutcomeMalformedRequest  OutcomeStatus = "malformed_request"
	OutcomeUnsupportedTarget OutcomeStatus = "unsupported_target"
	OutcomeImportFailure     OutcomeStatus = "import_failure"
	OutcomeRegisterMissing   OutcomeStatus = "register_missing"
	OutcomeExitRequested     OutcomeStatus = "exit_requested"
)

// Outcome is the result of dispatching one request.
type Outcome struct {
	RequestID string
	Request   ReloadRequest
	Target    Target
	Status    OutcomeStatus
	Report    UnregisterReport
	Err       error
}

// Failed reports whether the request was aborted. Missing register entry
// points and exit requests are warnings, not failures.
func (o Outcome) Failed() bool {
	switch o.Status {
	case OutcomeMalformedRequest, OutcomeUnsupportedTarget, OutcomeImportFailure:
		return true
	default:
		return false
	}
}
