package playback

import "sync"

// jobQueue is the engine's intake queue: unbounded, multi-producer FIFO with
// a single consumer. Put never blocks; the worker suspends on Wake when the
// queue is empty.
type jobQueue struct {
	mu   sync.Mutex
	jobs []Job
	wake chan struct{}
}

func newJobQueue() *jobQueue {
	return &jobQueue{wake: make(chan struct{}, 1)}
}

// Put enqueues a job and wakes the consumer.
func (q *jobQueue) Put(j Job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	q.mu.Unlock()
	q.signal()
}

// TryTake pops the oldest job, if any.
func (q *jobQueue) TryTake() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, true
}

func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Clear discards all pending jobs.
func (q *jobQueue) Clear() {
	q.mu.Lock()
	q.jobs = nil
	q.mu.Unlock()
}

// Wake returns the channel the consumer selects on. A receipt means at least
// one Put happened since the last drain; the consumer must TryTake in a loop.
func (q *jobQueue) Wake() <-chan struct{} {
	return q.wake
}

// Nudge re-signals the consumer if jobs are still pending. Used after a
// session reset so preserved jobs start playing.
func (q *jobQueue) Nudge() {
	q.mu.Lock()
	pending := len(q.jobs) > 0
	q.mu.Unlock()
	if pending {
		q.signal()
	}
}

func (q *jobQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
