package journal

import (
	"github.com/rjfmedia/lempicka-sync/pkg/logging"
)

// writeRequest is a single queued journal write.
type writeRequest struct {
	path   string
	state  *State
	result chan error
}

// Queue serializes journal writes into a single-consumer FIFO so that every
// externally visible mutation (entry start, backup taken, commit, failure)
// is durable in source order before the caller proceeds to the next
// irreversible step. A Queue must be created with NewQueue and stopped with
// Close once a run completes.
type Queue struct {
	requests chan writeRequest
	done     chan struct{}
	logger   *logging.Logger
}

// NewQueue starts a queue's consumer goroutine and returns the queue handle.
func NewQueue(logger *logging.Logger) *Queue {
	q := &Queue{
		requests: make(chan writeRequest),
		done:     make(chan struct{}),
		logger:   logger.Sublogger("journal.queue"),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for request := range q.requests {
		err := Write(request.path, request.state, q.logger)
		if err != nil {
			q.logger.Warnf("journal write failed: %v", err)
		}
		request.result <- err
	}
}

// Enqueue submits state for writing to path and blocks until the write has
// completed (successfully or not), so that callers can rely on durability
// before taking their next irreversible step.
func (q *Queue) Enqueue(path string, state *State) error {
	result := make(chan error, 1)
	q.requests <- writeRequest{path: path, state: state, result: result}
	return <-result
}

// Close drains any in-flight write and stops the consumer goroutine. It
// must be called exactly once, after the last Enqueue call for a run.
func (q *Queue) Close() {
	close(q.requests)
	<-q.done
}
