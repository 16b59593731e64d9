package prover

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait may block on output pipes after the child
// has been killed.
const waitDelay = 2 * time.Second

// Engine describes one reasoning engine binary.
type Engine struct {
	Name     string
	Path     string
	Args     []string
	Timeout  time.Duration
	Classify Classifier
}

// NewMace4 returns the model finder engine.
func NewMace4(path string, timeout time.Duration) Engine {
	return Engine{Name: "mace4", Path: path, Timeout: timeout, Classify: ClassifyMace4}
}

// NewProver9 returns the theorem prover engine.
func NewProver9(path string, timeout time.Duration) Engine {
	return Engine{Name: "prover9", Path: path, Timeout: timeout, Classify: ClassifyProver9}
}

// RunResult is the outcome of one subprocess.
type RunResult struct {
	Engine     string
	Verdict    Verdict
	Transcript string
	Stderr     string
	ExitCode   int
	Duration   time.Duration
	// Err carries EngineTimeoutError, EngineCrashError or the caller's
	// context error. Callers branch on Verdict.
	Err       error
	Cancelled bool
}

// Run feeds program to the engine on stdin and waits for it under the
// engine deadline. The child is killed when either the deadline passes or
// ctx is cancelled, and it is always reaped before Run returns.
func (e Engine) Run(ctx context.Context, program string) RunResult {
	res := RunResult{Engine: e.Name, ExitCode: -1}
	if err := ctx.Err(); err != nil {
		res.Err = err
		res.Cancelled = true
		return res
	}

	runCtx := ctx
	cancel := func() {}
	if e.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.Path, e.Args...)
	cmd.Stdin = strings.NewReader(program)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Transcript = stdout.String()
	res.Stderr = strings.TrimSpace(stderr.String())
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case ctx.Err() != nil:
		res.Verdict = Errored
		res.Err = ctx.Err()
		res.Cancelled = true
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.Verdict = TimedOut
		res.Err = &EngineTimeoutError{Engine: e.Name, Limit: e.Timeout}
	case err != nil && res.ExitCode < 0:
		// failed to start, or terminated by a signal
		res.Verdict = Errored
		res.Err = &EngineCrashError{Engine: e.Name, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
	default:
		classify := e.Classify
		if classify == nil {
			classify = func(string, int) Verdict { return Errored }
		}
		res.Verdict = classify(res.Transcript, res.ExitCode)
		if res.Verdict == Errored {
			res.Err = &EngineCrashError{Engine: e.Name, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
		}
	}
	return res
}
