package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// StageResult is the tagged outcome of one stage: either continue with an
// extended state, or abort the run with a detail message.
type StageResult struct {
	state  State
	abort  bool
	detail string
}

// Continue signals success and hands the extended state to the next stage.
func Continue(s State) StageResult {
	return StageResult{state: s}
}

// Abort signals a stage-fatal error. The controller stops the run and
// reports the aborting stage's name alongside detail.
func Abort(detail string) StageResult {
	return StageResult{abort: true, detail: detail}
}

// Unpack exposes the result for callers outside the controller loop,
// mostly stage tests.
func (r StageResult) Unpack() (s State, abort bool, detail string) {
	return r.state, r.abort, r.detail
}

// Stage is one step of the pipeline. Run must not mutate the input state
// on the abort path; the controller returns the last-known state as-is.
type Stage interface {
	Name() string
	Run(ctx context.Context, s State) StageResult
}

// RunResult is what the pipeline hands back to the caller. It is either
// the full successful state or the last-known state frozen at the failing
// stage, annotated with that stage's identity and detail. The pipeline
// never surfaces an unhandled fault.
type RunResult struct {
	Status      string    `json:"status"`
	FailedStage string    `json:"failed_stage,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
	State       State     `json:"state"`
}

// Failed reports whether the run aborted.
func (r RunResult) Failed() bool { return r.Status == StatusError }

// Runner executes stages in order with short-circuit-on-error semantics.
type Runner struct {
	stages []Stage
	log    *zap.Logger

	// OnStage, when set, is invoked after every executed stage with its
	// status ("ok" or "error"), abort detail, and wall-clock duration.
	OnStage func(stage, status, detail string, d time.Duration)
}

// NewRunner builds a Runner over the given stages. A nil logger is
// replaced with a no-op logger.
func NewRunner(log *zap.Logger, stages ...Stage) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{stages: stages, log: log}
}

// Run folds the initial state through each stage, stopping at the first
// abort. Context cancellation between stages is reported as an abort
// attributed to the stage that would have run next.
func (r *Runner) Run(ctx context.Context, initial State) RunResult {
	res := RunResult{Status: StatusOK, Started: time.Now().UTC(), State: initial}
	state := initial

	for _, st := range r.stages {
		if err := ctx.Err(); err != nil {
			res.Status = StatusError
			res.FailedStage = st.Name()
			res.Detail = "run cancelled: " + err.Error()
			break
		}

		r.log.Info("stage start", zap.String("stage", st.Name()))
		begin := time.Now()
		out := st.Run(ctx, state)
		elapsed := time.Since(begin)

		if out.abort {
			r.log.Warn("stage aborted",
				zap.String("stage", st.Name()),
				zap.String("detail", out.detail),
				zap.Duration("elapsed", elapsed))
			if r.OnStage != nil {
				r.OnStage(st.Name(), StatusError, out.detail, elapsed)
			}
			res.Status = StatusError
			res.FailedStage = st.Name()
			res.Detail = out.detail
			break
		}

		r.log.Info("stage done",
			zap.String("stage", st.Name()),
			zap.Duration("elapsed", elapsed))
		if r.OnStage != nil {
			r.OnStage(st.Name(), StatusOK, "", elapsed)
		}
		state = out.state
	}

	res.State = state
	res.Finished = time.Now().UTC()
	return res
}
