package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/grain"
	"github.com/san-kum/grainsim/internal/logging"
)

// Job is one independent design in a batch.
type Job struct {
	Name    string
	Spec    *grain.Spec
	Port    geom.Polygon
	Config  Config
	Metrics func() []Metric
}

type JobResult struct {
	Name   string
	Result *Result
	Err    error
}

// Batch runs independent jobs on at most workers goroutines. Every job gets
// its own simulator and metric set; observers are shared and must be safe
// for concurrent use. Results keep the order of jobs.
type Batch struct {
	workers   int
	log       logging.Logger
	observers []Observer
}

func NewBatch(workers int, log logging.Logger) *Batch {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Batch{workers: workers, log: log}
}

func (b *Batch) AddObserver(o Observer) { b.observers = append(b.observers, o) }

// Run returns ctx's error if the batch was cancelled; per-job failures are
// reported in the results.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, job := range jobs {
		g.Go(func() error {
			s := New(job.Spec, b.log.With(logging.String("job", job.Name)))
			if job.Metrics != nil {
				for _, m := range job.Metrics() {
					s.AddMetric(m)
				}
			}
			for _, o := range b.observers {
				s.AddObserver(o)
			}

			res, err := s.Run(ctx, job.Port, job.Config)
			results[i] = JobResult{Name: job.Name, Result: res, Err: err}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
