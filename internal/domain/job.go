package domain

import "time"

// JobState enumerates job lifecycle states.
type JobState string

const (
	JobStateIdle    JobState = "idle"
	JobStateRunning JobState = "running"
)

// Job encapsulates a single prompt-to-images generation request.
type Job struct {
	Prompt      string
	Query       string
	RequestHash string
	User        User
	State       JobState
	StartedAt   time.Time
}

// FailureClass enumerates the ways an external generation run can fail.
type FailureClass string

const (
	FailureNone          FailureClass = ""
	FailureLaunch        FailureClass = "launch"
	FailureGeneration    FailureClass = "generation"
	FailureMissingOutput FailureClass = "missing_output"
	FailureTimeout       FailureClass = "timeout"
	FailureCanceled      FailureClass = "canceled"
)

// Outcome is the result reported when the external process completes.
type Outcome struct {
	Succeeded bool
	Failure   FailureClass
	Err       error
	Reused    bool
	Duration  time.Duration
}

// SucceededOutcome reports a run that produced every expected image.
func SucceededOutcome(d time.Duration) Outcome {
	return Outcome{Succeeded: true, Duration: d}
}

// FailedOutcome reports a classified failure.
func FailedOutcome(class FailureClass, err error, d time.Duration) Outcome {
	return Outcome{Failure: class, Err: err, Duration: d}
}
