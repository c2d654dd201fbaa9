package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sheetrun/internal/testcase"
)

// Runner executes a suite with a bounded number of concurrent cases. Each case
// gets its own page; cases share nothing but the read-only suite.
type Runner struct {
	Engine  *Engine
	Opener  PageOpener
	Workers int
	// CaseTimeout bounds one case. Zero means no bound beyond ctx.
	CaseTimeout time.Duration
	Logger      *zap.Logger
	// OnResult, if set, is called once per finished case. Calls are serialized.
	OnResult func(Result)
}

// Run executes the suite and returns results in suite order together with a
// summary. Failing cases never stop the run; cancelling ctx stops scheduling,
// and unstarted cases are reported as skipped.
func (r *Runner) Run(ctx context.Context, suite []testcase.Descriptor) ([]Result, Summary, error) {
	if r.Engine == nil || r.Opener == nil {
		return nil, Summary{}, fmt.Errorf("runner needs an engine and a page opener")
	}

	runID := uuid.NewString()
	log := r.logger().With(zap.String("run_id", runID))
	engine := *r.Engine
	engine.Logger = engine.logger().With(zap.String("run_id", runID))

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	log.Info("suite started", zap.Int("cases", len(suite)), zap.Int("workers", workers))

	start := time.Now()
	results := make([]Result, len(suite))
	var mu sync.Mutex
	report := func(res Result) {
		if r.OnResult == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		r.OnResult(res)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, d := range suite {
		if ctx.Err() != nil {
			results[i] = Result{Descriptor: d, Err: fmt.Errorf("%w: %v", errSkipped, ctx.Err())}
			report(results[i])
			continue
		}
		g.Go(func() error {
			results[i] = r.runCase(ctx, &engine, d)
			report(results[i])
			return nil
		})
	}
	_ = g.Wait()

	sum := Summarize(results)
	sum.RunID = runID
	sum.Duration = time.Since(start)
	log.Info("suite finished",
		zap.Int("total", sum.Total),
		zap.Int("passed", sum.Passed),
		zap.Int("failed", sum.Failed),
		zap.Int("errored", sum.Errored),
		zap.Int("skipped", sum.Skipped),
		zap.Duration("duration", sum.Duration))
	return results, sum, ctx.Err()
}

func (r *Runner) runCase(ctx context.Context, engine *Engine, d testcase.Descriptor) Result {
	if r.CaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.CaseTimeout)
		defer cancel()
	}

	page, release, err := r.Opener.OpenPage(ctx)
	if err != nil {
		return Result{Descriptor: d, Err: &CaseError{Stage: StageOpen, Err: err}}
	}
	defer release()

	return engine.Execute(ctx, d, page)
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
