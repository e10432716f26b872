package suite

import (
	"context"
	"time"

	"github.com/mittwald/pageprobe/pkg/probe"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Evaluator interface {
	Evaluate(ctx context.Context, target probe.Target, checklist probe.Checklist, threshold float64) *probe.Result
}

type Runner struct {
	evaluator Evaluator
}

func NewRunner(evaluator Evaluator) *Runner {
	if evaluator == nil {
		evaluator = probe.NewProber()
	}
	return &Runner{evaluator: evaluator}
}

// Run evaluates every check of s once. Checks run in parallel, bounded by the
// suite concurrency; results keep the declaration order.
func (r *Runner) Run(ctx context.Context, s *Suite) *Report {
	logger := log.WithFields(log.Fields{"kind": "suite", "name": s.Name})
	logger.Infof("running %d probes", len(s.Checks))

	start := time.Now()
	results := make([]*probe.Result, len(s.Checks))

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range s.Checks {
		i := i
		g.Go(func() error {
			c := s.Checks[i]
			results[i] = r.evaluator.Evaluate(gctx, c.Target, c.Checklist, c.Threshold)
			return nil
		})
	}

	_ = g.Wait()

	report := NewReport(s.Name, results)
	report.Duration = time.Since(start)

	logger.WithFields(log.Fields{
		"passed":   report.Passed,
		"mismatch": report.Mismatched,
		"errored":  report.Errored,
	}).Info("suite finished")

	return report
}

// RunAll runs the suites one after another.
func (r *Runner) RunAll(ctx context.Context, suites []*Suite) []*Report {
	reports := make([]*Report, 0, len(suites))
	for _, s := range suites {
		reports = append(reports, r.Run(ctx, s))
	}
	return reports
}
