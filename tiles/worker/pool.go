package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single task.
const DefaultTimeout = 10 * time.Second

// Pool runs tasks on a fixed number of goroutines.
type Pool struct {
	tasks   chan Task
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	timeout time.Duration
	log     zerolog.Logger
}

type Task struct {
	Ctx  context.Context
	Name string
	Work func(ctx context.Context) error
}

// Option configures a Pool.
type Option func(*Pool)

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pool) {
		p.timeout = d
	}
}

func NewPool(maxWorkers int, log zerolog.Logger, opts ...Option) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	p := &Pool{
		tasks:   make(chan Task, 100),
		quit:    make(chan struct{}),
		timeout: DefaultTimeout,
		log:     log.With().Str("component", "worker").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			p.run(task)
		}
	}
}

func (p *Pool) run(task Task) {
	parent := task.Ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()

	start := time.Now()
	if err := task.Work(ctx); err != nil {
		p.log.Debug().Err(err).Str("task", task.Name).Dur("duration", time.Since(start)).Msg("task failed")
		return
	}
	p.log.Trace().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("task done")
}

// Submit queues a task without blocking the caller. When the queue is full the task is
// handed over from a helper goroutine. It reports false once the pool is shut down.
func (p *Pool) Submit(task Task) bool {
	select {
	case <-p.quit:
		return false
	default:
	}

	select {
	case p.tasks <- task:
	default:
		go func() {
			select {
			case p.tasks <- task:
			case <-p.quit:
			}
		}()
	}
	return true
}

// Shutdown stops the workers and waits for running tasks. Queued tasks are dropped.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
