package jobsystem

import "sync"

// JobCounter is an atomic batch counter with a blocking wait, used to fence
// a caller until every job in a batch has finished (spec.md §3, "JobCounter").
type JobCounter struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

// NewJobCounter returns a zeroed counter ready for use.
func NewJobCounter() *JobCounter {
	c := &JobCounter{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Add increments the counter by n. Called before jobs referencing this
// counter are enqueued, so a waiter never observes a false "complete".
func (c *JobCounter) Add(n int) {
	if n == 0 {
		return
	}
	c.mu.Lock()
	c.count += n
	c.mu.Unlock()
}

// Done decrements the counter by one and wakes any waiters if it reaches
// zero. Called by a worker after a job returns, even if the job panicked.
func (c *JobCounter) Done() {
	c.mu.Lock()
	c.count--
	if c.count <= 0 {
		c.cond.Broadcast()
	}
	c.mu.Unlock()
}

// IsComplete reports whether the counter has reached zero, without blocking.
func (c *JobCounter) IsComplete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count <= 0
}

// Wait blocks until the counter reaches zero. Safe to call from multiple
// goroutines; all of them are released once the count hits zero.
func (c *JobCounter) Wait() {
	c.mu.Lock()
	for c.count > 0 {
		c.cond.Wait()
	}
	c.mu.Unlock()
}

// Remaining returns the current count, for diagnostics.
func (c *JobCounter) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count < 0 {
		return 0
	}
	return c.count
}
