package worker

import (
	"log/slog"
	"sync"

	"github.com/quillboard/quillboard/internal/metrics"
)

type task func()

// Pool runs background jobs (session purges and other off-request work)
// on a fixed set of goroutines.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
}

func NewPool(n int) *Pool {
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(job)
			}
		}()
	}
	return p
}

func (p *Pool) run(job task) {
	defer metrics.WorkerQueueDepth.Dec()
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker job panic", "err", rec)
		}
	}()
	job()
}

func (p *Pool) Submit(f task) {
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
}

func (p *Pool) Stop() { close(p.jobs); p.wg.Wait() }
