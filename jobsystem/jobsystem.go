// Package jobsystem implements the process-wide worker-pool scheduler
// described in spec.md §4.1: a prioritized queue, batch counters,
// parallel-for partitioning and cooperative yielding.
//
// The worker-pool shape (channel-free, mutex+condvar-guarded queue, workers
// looping wait/pop/execute/post-process) is a long-lived pool with an
// explicit Initialize/Shutdown lifecycle, per spec.md §4.1's "Lifecycle is
// explicit" requirement.
package jobsystem

import (
	"container/heap"
	"fmt"
	"runtime"
	"sync"

	"github.com/gekko3d/voxelcore/internal/elog"
)

// Config configures a JobSystem at Initialize time (spec.md §6).
type Config struct {
	// WorkerThreads is the worker count; 0 means auto (hardware_concurrency-1, min 1).
	WorkerThreads int `yaml:"worker_threads"`
	// QueueCapacity is advisory: the queue grows past it rather than blocking,
	// but a capacity hint lets callers reason about memory. 0 means unbounded.
	QueueCapacity int `yaml:"queue_capacity"`
	// EnablePriorities, when false, treats every job as Normal priority.
	EnablePriorities bool `yaml:"enable_priorities"`
	// ThreadNamePrefix labels worker goroutines in logs.
	ThreadNamePrefix string `yaml:"thread_name_prefix"`
	// Logger receives Initialize/Shutdown/misuse/panic diagnostics. Nil is fine.
	Logger elog.Logger `yaml:"-"`
}

// DefaultConfig returns sensible defaults: auto worker count, priorities on.
func DefaultConfig() Config {
	return Config{
		WorkerThreads:    0,
		QueueCapacity:    0,
		EnablePriorities: true,
		ThreadNamePrefix: "job-worker",
	}
}

// JobSystem is a worker-pool scheduler. The zero value is not usable;
// construct with New and call Initialize before Submit.
type JobSystem struct {
	cfg     Config
	log     elog.Logger
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   jobHeap
	running bool
	seq     uint64

	wg sync.WaitGroup
}

// New constructs an uninitialized JobSystem.
func New() *JobSystem {
	return &JobSystem{}
}

var (
	defaultMu       sync.Mutex
	defaultInstance *JobSystem
)

// Default returns the process-wide singleton, constructing and
// initializing it with DefaultConfig on first use. Test harnesses that want
// an isolated pool should use New()+Initialize directly instead (spec.md
// §9, "Singletons").
func Default() *JobSystem {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultInstance == nil {
		defaultInstance = New()
		defaultInstance.Initialize(DefaultConfig())
	}
	return defaultInstance
}

// Initialize starts the worker pool. Calling Initialize on an already-
// running JobSystem is a no-op that logs a warning (spec.md §4.1,
// "re-init without shutdown is a no-op warning").
func (js *JobSystem) Initialize(cfg Config) {
	js.mu.Lock()
	if js.running {
		js.mu.Unlock()
		elog.Or(cfg.Logger).Warnf("jobsystem: Initialize called while already running, ignoring")
		return
	}

	js.cfg = cfg
	js.log = elog.Or(cfg.Logger)
	js.cond = sync.NewCond(&js.mu)
	js.queue = js.queue[:0]
	js.running = true

	workers := cfg.WorkerThreads
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0) - 1
	}
	if workers < 1 {
		workers = 1
	}
	js.workers = workers
	js.mu.Unlock()

	js.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go js.workerLoop(i)
	}
	js.log.Infof("jobsystem: initialized with %d workers", workers)
}

// Shutdown stops accepting new submissions, drains in-flight work and waits
// for every worker to exit. No forced termination (spec.md §5).
func (js *JobSystem) Shutdown() {
	js.mu.Lock()
	if !js.running {
		js.mu.Unlock()
		return
	}
	js.running = false
	js.cond.Broadcast()
	js.mu.Unlock()

	js.wg.Wait()

	js.mu.Lock()
	js.queue = js.queue[:0]
	js.mu.Unlock()
	js.log.Infof("jobsystem: shut down")
}

// WorkerCount returns the number of active workers, 0 if not initialized.
func (js *JobSystem) WorkerCount() int {
	js.mu.Lock()
	defer js.mu.Unlock()
	if !js.running {
		return 0
	}
	return js.workers
}

func (js *JobSystem) workerLoop(idx int) {
	defer js.wg.Done()
	name := fmt.Sprintf("%s-%d", js.cfg.ThreadNamePrefix, idx)

	for {
		js.mu.Lock()
		for len(js.queue) == 0 && js.running {
			js.cond.Wait()
		}
		if len(js.queue) == 0 && !js.running {
			js.mu.Unlock()
			return
		}
		pj := heap.Pop(&js.queue).(*prioritizedJob)
		js.mu.Unlock()

		js.runJob(name, pj)
	}
}

// runJob executes one job, guaranteeing the handle/counter are always
// updated even if the job panics (spec.md §4.1 "Failure").
func (js *JobSystem) runJob(workerName string, pj *prioritizedJob) {
	defer func() {
		if r := recover(); r != nil {
			js.log.Errorf("jobsystem: job panic on %s: %v", workerName, r)
		}
		if pj.handle != nil {
			pj.handle.markComplete()
		}
		if pj.counter != nil {
			pj.counter.Done()
		}
	}()
	pj.job()
}

// enqueue pushes pj onto the queue and wakes one waiting worker.
// Caller must not hold js.mu.
func (js *JobSystem) enqueue(pj *prioritizedJob) error {
	js.mu.Lock()
	if !js.running {
		js.mu.Unlock()
		return fmt.Errorf("jobsystem: submit called before Initialize or after Shutdown")
	}
	if !js.cfg.EnablePriorities {
		pj.priority = Normal
	}
	js.seq++
	pj.seq = js.seq
	heap.Push(&js.queue, pj)
	js.mu.Unlock()
	js.cond.Signal()
	return nil
}

// Submit enqueues job at priority and returns a handle whose IsComplete
// becomes true once the job returns. Submitting before Initialize or after
// Shutdown fails cleanly: a nil handle and a non-nil error (spec.md §4.1).
func (js *JobSystem) Submit(job Job, priority Priority) (*JobHandle, error) {
	h := newJobHandle()
	pj := &prioritizedJob{job: job, priority: priority, handle: h}
	if err := js.enqueue(pj); err != nil {
		js.log.Warnf("%v", err)
		return nil, err
	}
	return h, nil
}

// SubmitWithCounter enqueues job at priority, incrementing counter before
// enqueue; the worker decrements it after the job returns (even on panic).
func (js *JobSystem) SubmitWithCounter(job Job, counter *JobCounter, priority Priority) error {
	counter.Add(1)
	pj := &prioritizedJob{job: job, priority: priority, counter: counter}
	if err := js.enqueue(pj); err != nil {
		counter.Done()
		js.log.Warnf("%v", err)
		return err
	}
	return nil
}

// SubmitAndWait submits every job sharing one counter, at priority, and
// blocks until all of them complete.
func (js *JobSystem) SubmitAndWait(jobs []Job, priority Priority) error {
	if len(jobs) == 0 {
		return nil
	}
	counter := NewJobCounter()
	for _, j := range jobs {
		if err := js.SubmitWithCounter(j, counter, priority); err != nil {
			return err
		}
	}
	counter.Wait()
	return nil
}

// YieldAndProcess pops and executes one pending job on the caller, if any
// is available, so a thread blocked waiting on a counter can contribute
// instead of spinning idle. Returns true if a job was run.
func (js *JobSystem) YieldAndProcess() bool {
	js.mu.Lock()
	if len(js.queue) == 0 {
		js.mu.Unlock()
		return false
	}
	pj := heap.Pop(&js.queue).(*prioritizedJob)
	js.mu.Unlock()

	js.runJob("yield-caller", pj)
	return true
}

// ParallelFor partitions [start, end) into contiguous batches of batchSize,
// submits one job per batch with a local counter, and waits. Small ranges
// (count <= batchSize, or zero workers) execute inline on the caller.
func (js *JobSystem) ParallelFor(start, end, batchSize int, fn func(i int)) {
	if end <= start {
		return
	}
	count := end - start
	if batchSize < 1 {
		batchSize = 1
	}

	if count <= batchSize || js.WorkerCount() == 0 {
		for i := start; i < end; i++ {
			fn(i)
		}
		return
	}

	counter := NewJobCounter()
	for s := start; s < end; s += batchSize {
		e := s + batchSize
		if e > end {
			e = end
		}
		batchStart, batchEnd := s, e
		job := func() {
			for i := batchStart; i < batchEnd; i++ {
				fn(i)
			}
		}
		if err := js.SubmitWithCounter(job, counter, Normal); err != nil {
			// Job system is unavailable: finish the remaining range inline
			// rather than hanging on counter.Wait().
			for i := batchStart; i < end; i++ {
				fn(i)
			}
			counter.Wait()
			return
		}
	}
	counter.Wait()
}

// ParallelForCount runs ParallelFor(0, count, batchSize, fn) with an
// auto-chosen batch size of max(1, count/(4*workers)).
func (js *JobSystem) ParallelForCount(count int, fn func(i int)) {
	workers := js.WorkerCount()
	if workers < 1 {
		workers = 1
	}
	batchSize := count / (4 * workers)
	if batchSize < 1 {
		batchSize = 1
	}
	js.ParallelFor(0, count, batchSize, fn)
}

// ParallelForRange partitions [start, end) the same way as ParallelFor but
// hands each job its half-open sub-range instead of calling fn per index —
// useful when fn amortizes setup cost across a batch.
func (js *JobSystem) ParallelForRange(start, end, batchSize int, fn func(s, e int)) {
	if end <= start {
		return
	}
	count := end - start
	if batchSize < 1 {
		batchSize = 1
	}

	if count <= batchSize || js.WorkerCount() == 0 {
		fn(start, end)
		return
	}

	counter := NewJobCounter()
	for s := start; s < end; s += batchSize {
		e := s + batchSize
		if e > end {
			e = end
		}
		batchStart, batchEnd := s, e
		job := func() { fn(batchStart, batchEnd) }
		if err := js.SubmitWithCounter(job, counter, Normal); err != nil {
			fn(batchStart, end)
			counter.Wait()
			return
		}
	}
	counter.Wait()
}
