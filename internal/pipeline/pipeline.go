// Package pipeline orders the calculation stages by their declared
// dependencies, executes each exactly once, and aggregates all results and
// provenance into a single report. Stages with no mutual dependency run
// concurrently; any hard failure halts the run before later stages start,
// so a partial report is never presented as complete.
package pipeline

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iwvelando/econloss/internal/profile"
	"github.com/iwvelando/econloss/internal/report"
	"github.com/iwvelando/econloss/internal/stages"
	"github.com/iwvelando/econloss/pkg/provenance"
	"github.com/iwvelando/econloss/pkg/refdata"
)

// ErrProvenanceGap indicates a stage produced an output with no
// corresponding provenance entry. It is a programming defect in the stage,
// not a data problem.
var ErrProvenanceGap = errors.New("stage output missing provenance coverage")

// Status is a stage's execution state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Progress is a point-in-time snapshot of one stage's state.
type Progress struct {
	Stage  string
	Status Status
}

// Error is the structured failure a halted run returns: the failing
// stage, the underlying cause, and everything completed before the halt.
type Error struct {
	Stage     string
	Err       error
	Completed []*stages.Result
}

// Error implements error.
func (e *Error) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	return "stage " + e.Stage + ": " + e.Err.Error()
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// executionOrder is the canonical stage order used for provenance
// grouping and progress reporting.
var executionOrder = []string{
	stages.StageLifeExpectancy,
	stages.StageWorklifeExpectancy,
	stages.StageWageGrowth,
	stages.StageDiscountRate,
	stages.StagePresentValue,
}

// Pipeline executes the five calculation stages against one reference
// data source. A Pipeline may be reused across runs; each Run resets its
// progress tracking.
type Pipeline struct {
	source refdata.Source
	logger *zap.Logger

	mu     sync.Mutex
	status map[string]Status
}

// New creates a Pipeline. If logger is nil, it will use a no-op logger to
// prevent panics.
func New(source refdata.Source, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		source: source,
		logger: logger,
		status: pendingStatus(),
	}
}

func pendingStatus() map[string]Status {
	status := make(map[string]Status, len(executionOrder))
	for _, name := range executionOrder {
		status[name] = StatusPending
	}
	return status
}

// Progress returns a snapshot of every stage's state in execution order.
func (p *Pipeline) Progress() []Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Progress, 0, len(executionOrder))
	for _, name := range executionOrder {
		out = append(out, Progress{Stage: name, Status: p.status[name]})
	}
	return out
}

func (p *Pipeline) setStatus(stage string, status Status) {
	p.mu.Lock()
	p.status[stage] = status
	p.mu.Unlock()
}

// Run executes the pipeline for one subject profile. All stage provenance
// is appended to rec grouped by stage in execution order, and the same
// concatenation is embedded in the returned report. On a hard failure the
// returned error is a *Error carrying the results completed so far; rec
// then holds the partial provenance.
func (p *Pipeline) Run(ctx context.Context, prof profile.SubjectProfile, rec *provenance.Recorder) (*report.Report, error) {
	p.mu.Lock()
	p.status = pendingStatus()
	p.mu.Unlock()

	if err := prof.Validate(); err != nil {
		p.logger.Error("subject profile failed validation",
			zap.String("op", "pipeline.Run"),
			zap.Error(err),
		)
		return nil, &Error{Err: err}
	}

	results := make(map[string]*stages.Result, len(executionOrder))

	// LifeExpectancy then WorklifeExpectancy, strictly ordered.
	for _, stage := range []stages.Stage{
		stages.NewLifeExpectancy(p.logger),
		stages.NewWorklifeExpectancy(p.logger),
	} {
		result, err := p.runStage(ctx, stage, prof, results)
		if err != nil {
			return nil, p.halt(stage.Name(), err, results, rec)
		}
		results[stage.Name()] = result
	}

	// WageGrowth and DiscountRate have no mutual dependency and run
	// concurrently. Each stage records into its own recorder, so the only
	// shared state is the results map, written after both complete.
	var (
		growthResult   *stages.Result
		discountResult *stages.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := p.runStage(gctx, stages.NewWageGrowth(p.logger), prof, results)
		if err != nil {
			return &Error{Stage: stages.StageWageGrowth, Err: err}
		}
		growthResult = result
		return nil
	})
	g.Go(func() error {
		result, err := p.runStage(gctx, stages.NewDiscountRate(p.logger), prof, results)
		if err != nil {
			return &Error{Stage: stages.StageDiscountRate, Err: err}
		}
		discountResult = result
		return nil
	})
	err := g.Wait()
	if growthResult != nil {
		results[stages.StageWageGrowth] = growthResult
	}
	if discountResult != nil {
		results[stages.StageDiscountRate] = discountResult
	}
	if err != nil {
		var stageErr *Error
		if errors.As(err, &stageErr) {
			return nil, p.halt(stageErr.Stage, stageErr.Err, results, rec)
		}
		return nil, p.halt("", err, results, rec)
	}

	pv := stages.NewPresentValue(p.logger)
	result, err := p.runStage(ctx, pv, prof, results)
	if err != nil {
		return nil, p.halt(pv.Name(), err, results, rec)
	}
	results[pv.Name()] = result

	ordered := orderedResults(results)
	for _, r := range ordered {
		rec.Append(r.Provenance...)
	}

	rep := report.New(prof, ordered, rec.Entries())
	p.logger.Info("pipeline run complete",
		zap.String("op", "pipeline.Run"),
		zap.String("run_id", rep.RunID.String()),
		zap.Float64("total_present_value", rep.TotalPresentValue),
		zap.Bool("used_fallback", rep.UsedFallback),
	)
	return rep, nil
}

// runStage executes one stage and enforces the provenance-completeness
// post-condition: every output key must be covered by an entry.
func (p *Pipeline) runStage(ctx context.Context, stage stages.Stage, prof profile.SubjectProfile, upstream map[string]*stages.Result) (*stages.Result, error) {
	name := stage.Name()
	p.setStatus(name, StatusRunning)
	p.logger.Debug("stage starting", zap.String("op", "pipeline.runStage"), zap.String("stage", name))

	for _, dep := range stage.Dependencies() {
		if _, ok := upstream[dep]; !ok {
			p.setStatus(name, StatusFailed)
			return nil, errors.AssertionFailedf("stage %s scheduled before dependency %s", name, dep)
		}
	}

	result, err := stage.Execute(ctx, stages.Inputs{
		Profile:  prof,
		Upstream: upstream,
		Source:   p.source,
	})
	if err != nil {
		p.setStatus(name, StatusFailed)
		return nil, err
	}

	keys := make([]string, 0, len(result.Outputs))
	for k := range result.Outputs {
		keys = append(keys, k)
	}
	if missing := provenance.MissingCoverage(result.Provenance, keys); len(missing) > 0 {
		p.setStatus(name, StatusFailed)
		return nil, errors.Mark(
			errors.Newf("stage %s outputs %v lack provenance entries", name, missing),
			ErrProvenanceGap,
		)
	}

	p.setStatus(name, StatusCompleted)
	return result, nil
}

// halt records the failure, appends the provenance of every completed
// stage to rec, and builds the structured pipeline error.
func (p *Pipeline) halt(stage string, err error, results map[string]*stages.Result, rec *provenance.Recorder) error {
	completed := orderedResults(results)
	for _, r := range completed {
		rec.Append(r.Provenance...)
	}
	p.logger.Error("pipeline halted",
		zap.String("op", "pipeline.Run"),
		zap.String("stage", stage),
		zap.Int("completed_stages", len(completed)),
		zap.Error(err),
	)
	return &Error{Stage: stage, Err: err, Completed: completed}
}

func orderedResults(results map[string]*stages.Result) []*stages.Result {
	out := make([]*stages.Result, 0, len(results))
	for _, name := range executionOrder {
		if r, ok := results[name]; ok {
			out = append(out, r)
		}
	}
	return out
}
