package prover

import (
	"fmt"
	"time"
)

// EngineTimeoutError tags a run killed at its wall-clock deadline.
type EngineTimeoutError struct {
	Engine string
	Limit  time.Duration
}

func (e *EngineTimeoutError) Error() string {
	return fmt.Sprintf("%s: killed after %s", e.Engine, e.Limit)
}

// EngineCrashError tags a run that could not start or ended abnormally.
type EngineCrashError struct {
	Engine   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EngineCrashError) Error() string {
	msg := fmt.Sprintf("%s: abnormal termination (exit %d)", e.Engine, e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *EngineCrashError) Unwrap() error { return e.Err }
