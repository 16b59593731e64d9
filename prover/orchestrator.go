package prover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/theoremus-urban-solutions/transit-fol-planner/artifacts"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal"
)

// ArtifactSink persists programs and transcripts.
type ArtifactSink interface {
	Save(ctx context.Context, run artifacts.RunID, engine string, kind artifacts.Kind, verdict string, data []byte) (string, error)
}

// ProofArtifact is the immutable record of one engine run.
type ProofArtifact struct {
	Engine     string        `json:"engine"`
	Verdict    Verdict       `json:"verdict"`
	Transcript string        `json:"transcript"`
	InputFile  string        `json:"input_file,omitempty"`
	OutputFile string        `json:"output_file,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Err        error         `json:"-"`
}

// Outcome is the result of verifying one candidate path.
type Outcome struct {
	Existence  *ProofArtifact
	Derivation *ProofArtifact
	// Valid is false only when the model finder disproved the path.
	Valid     bool
	Method    string
	Cancelled bool
}

// Options tunes concurrency and failure isolation.
type Options struct {
	MaxConcurrent   int64
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{MaxConcurrent: 4, BreakerFailures: 5, BreakerCooldown: 30 * time.Second}
}

// Orchestrator runs the existence and derivation engines for plans.
// It is safe for concurrent use.
type Orchestrator struct {
	modelFinder Engine
	prover      Engine
	sem         *semaphore.Weighted
	breakers    map[string]*gobreaker.CircuitBreaker
	sink        ArtifactSink
	metrics     *internal.Metrics
	logger      *zap.Logger
}

// NewOrchestrator wires both engines. sink and metrics may be nil.
func NewOrchestrator(modelFinder, prover Engine, sink ArtifactSink, opts Options, logger *zap.Logger, metrics *internal.Metrics) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = def.MaxConcurrent
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = def.BreakerFailures
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = def.BreakerCooldown
	}
	o := &Orchestrator{
		modelFinder: modelFinder,
		prover:      prover,
		sem:         semaphore.NewWeighted(opts.MaxConcurrent),
		breakers:    map[string]*gobreaker.CircuitBreaker{},
		sink:        sink,
		metrics:     metrics,
		logger:      logger,
	}
	for _, e := range []Engine{modelFinder, prover} {
		o.breakers[e.Name] = newBreaker(e.Name, opts, logger)
	}
	return o
}

func newBreaker(name string, opts Options, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("engine circuit breaker state changed",
				zap.String("engine", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Verify certifies existence with the model finder and, only when a model
// is found, derives the destination with the theorem prover. Artifacts are
// written once both stages are settled, never for a cancelled run.
func (o *Orchestrator) Verify(ctx context.Context, existence, derivation string, saveInputs bool) Outcome {
	out, runs := o.verify(ctx, existence, derivation)
	if saveInputs && o.sink != nil && !out.Cancelled && ctx.Err() == nil {
		for _, r := range runs {
			o.persist(ctx, r.artifact, r.program)
		}
	}
	return out
}

func (o *Orchestrator) verify(ctx context.Context, existence, derivation string) (Outcome, []engineRun) {
	run := o.run(ctx, o.modelFinder, existence)
	out := Outcome{Existence: run.artifact, Valid: true}
	runs := []engineRun{run}
	if run.cancelled {
		out.Cancelled = true
		out.Method = "verification cancelled"
		return out, runs
	}

	switch run.artifact.Verdict {
	case Succeeded:
	case Disproved:
		out.Valid = false
		out.Method = "no model found; path connectivity disproved"
		return out, runs
	default:
		out.Method = fmt.Sprintf("model finder %s; graph-only result", describe(run.artifact.Verdict))
		return out, runs
	}

	run = o.run(ctx, o.prover, derivation)
	out.Derivation = run.artifact
	runs = append(runs, run)
	switch {
	case run.cancelled:
		out.Cancelled = true
		out.Method = "model found; verification cancelled"
	case run.artifact.Verdict == Succeeded:
		out.Method = "model found; step-derivation proved"
	default:
		out.Method = fmt.Sprintf("model found; derivation %s, falling back to graph-only result", describe(run.artifact.Verdict))
	}
	return out, runs
}

func describe(v Verdict) string {
	switch v {
	case Disproved:
		return "exhausted without proof"
	case TimedOut:
		return "timed out"
	default:
		return v.String()
	}
}

type engineRun struct {
	artifact  *ProofArtifact
	program   string
	cancelled bool
}

func (o *Orchestrator) run(ctx context.Context, e Engine, program string) engineRun {
	log := o.logger.With(zap.String("engine", e.Name))
	res, err := o.breakers[e.Name].Execute(func() (interface{}, error) {
		waitStart := time.Now()
		if err := o.sem.Acquire(ctx, 1); err != nil {
			return RunResult{Engine: e.Name, ExitCode: -1, Err: err, Cancelled: true}, nil
		}
		o.metrics.ObserveQueueWait(time.Since(waitStart))
		r := e.Run(ctx, program)
		o.sem.Release(1)

		var crash *EngineCrashError
		if errors.As(r.Err, &crash) {
			return r, r.Err
		}
		return r, nil
	})

	var r RunResult
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		r = RunResult{Engine: e.Name, Verdict: Errored, ExitCode: -1,
			Err: &EngineCrashError{Engine: e.Name, ExitCode: -1, Err: err}}
	default:
		r = res.(RunResult)
	}

	a := &ProofArtifact{
		Engine:     e.Name,
		Verdict:    r.Verdict,
		Transcript: r.Transcript,
		Duration:   r.Duration,
		Err:        r.Err,
	}
	if r.Cancelled {
		log.Info("engine run cancelled", zap.Error(r.Err))
		return engineRun{artifact: a, program: program, cancelled: true}
	}
	o.metrics.ObserveEngine(e.Name, r.Verdict.String(), r.Duration)
	log.Info("engine run finished",
		zap.String("verdict", r.Verdict.String()),
		zap.Int("exit_code", r.ExitCode),
		zap.Duration("took", r.Duration),
		zap.Error(r.Err),
	)
	return engineRun{artifact: a, program: program}
}

func (o *Orchestrator) persist(ctx context.Context, a *ProofArtifact, program string) {
	log := o.logger.With(zap.String("engine", a.Engine))
	id := artifacts.NewRunID()
	in, err := o.sink.Save(ctx, id, a.Engine, artifacts.KindInput, "", []byte(program))
	if err != nil {
		log.Warn("failed to save engine input", zap.Error(err))
		return
	}
	a.InputFile = in
	out, err := o.sink.Save(ctx, id, a.Engine, artifacts.KindOutput, a.Verdict.String(), []byte(a.Transcript))
	if err != nil {
		log.Warn("failed to save engine output", zap.Error(err))
		return
	}
	a.OutputFile = out
}
