package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/nimasrn/card-gateway/pkg/logger"
)

var (
	ErrWorkersTerminated = errors.New("workers terminated")
	ErrPoolClosed        = errors.New("worker pool is closed")
)

// Job is one unit of work. ctx is the context the pool was started with.
type Job = func(ctx context.Context)

type WorkerManager struct {
	bufferSize     int
	numberOfWorker int
	jobChannel     chan Job
	quit           chan struct{}
	quitOnce       sync.Once
	waiter         *sync.WaitGroup
}

// NewWorkerManager
// is a job manager based on go routines. Define the number of internal
// workers, then start publishing jobs with Enqueue(). Jobs are distributed
// among the pool. Jobs enqueued before Start() wait in the buffer.
// To stop the workers call Exit() or cancel the context passed to Start().
func NewWorkerManager(bufferSize, numberOfWorkers int) *WorkerManager {
	if numberOfWorkers <= 0 {
		numberOfWorkers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &WorkerManager{
		bufferSize:     bufferSize,
		numberOfWorker: numberOfWorkers,
		jobChannel:     make(chan Job, bufferSize),
		quit:           make(chan struct{}),
		waiter:         &sync.WaitGroup{},
	}
}

func (w *WorkerManager) GetUnreadCount() int64 {
	return int64(len(w.jobChannel))
}

// Enqueue
// publishes a job onto the channel. It blocks while the buffer is full and
// fails once the pool has exited.
func (w *WorkerManager) Enqueue(job Job) error {
	select {
	case <-w.quit:
		return ErrPoolClosed
	default:
	}
	select {
	case w.jobChannel <- job:
		return nil
	case <-w.quit:
		return ErrPoolClosed
	}
}

// Start
// starts off the workers as many as defined by w.numberOfWorker and blocks
// until all of them have returned.
func (w *WorkerManager) Start(ctx context.Context) error {
	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.waiter.Done()
			for {
				select {
				case job := <-w.jobChannel:
					w.run(ctx, index, job)
				case <-w.quit:
					return
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}
	w.waiter.Wait()
	w.Exit()

	return ErrWorkersTerminated
}

func (w *WorkerManager) run(ctx context.Context, index int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[worker] job panicked", "worker", index, "panic", r)
		}
	}()
	job(ctx)
}

// Done is closed once the pool stops accepting and running jobs, either by
// Exit or because Start returned. Jobs still buffered at that point never run.
func (w *WorkerManager) Done() <-chan struct{} {
	return w.quit
}

// Exit
// stops every worker after its current job. Jobs still buffered are dropped.
func (w *WorkerManager) Exit() {
	w.quitOnce.Do(func() {
		logger.Info("[worker] exit called, shutting down worker manager", "pending", w.GetUnreadCount())
		close(w.quit)
	})
}
