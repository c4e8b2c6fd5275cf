package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrQueueFull  = errors.New("reminder queue full")
	ErrPoolClosed = errors.New("reminder pool closed")
)

type Job struct {
	Candidate Candidate
	done      func()
}

func (j Job) finish() {
	if j.done != nil {
		j.done()
	}
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(context.Context, Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("reminder worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("reminder worker processing job", "worker_id", w.ID, "list_id", job.Candidate.ListID)
				processFunc(ctx, job)
				job.finish()
			case <-ctx.Done():
				w.Logger.Debug("reminder worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type PoolConfig struct {
	MaxWorkers   int
	JobQueueSize int
}

// Pool fans jobs out to a fixed set of workers through a dispatcher.
type Pool struct {
	logger     *slog.Logger
	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	process    func(context.Context, Job)
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	mu         sync.Mutex
	closed     bool
}

func NewPool(config PoolConfig, process func(context.Context, Job), logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	return &Pool{
		logger:     logger,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, maxWorkers),
		maxWorkers: maxWorkers,
		process:    process,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (p *Pool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			NewWorker(i, p.workerPool, p.logger).Start(p.ctx, &p.wg, p.process)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("reminder worker pool started",
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

func (p *Pool) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- job:
				case <-p.ctx.Done():
					job.finish()
					return
				}
			case <-p.ctx.Done():
				job.finish()
				return
			}
		case <-p.ctx.Done():
			p.logger.Info("reminder dispatcher shutting down")
			return
		}
	}
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops the workers and finishes every job that never started, so
// callers waiting on a batch are released.
func (p *Pool) Shutdown() {
	p.logger.Info("shutting down reminder worker pool")
	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	dropped := 0
	for {
		select {
		case job := <-p.jobQueue:
			job.finish()
			dropped++
		default:
			p.logger.Info("reminder worker pool shutdown complete", "dropped_jobs", dropped)
			return
		}
	}
}
