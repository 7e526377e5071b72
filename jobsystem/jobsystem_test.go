package jobsystem

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gekko3d/voxelcore/internal/elog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystem(t *testing.T, workers int) *JobSystem {
	js := New()
	js.Initialize(Config{WorkerThreads: workers, EnablePriorities: true})
	t.Cleanup(js.Shutdown)
	return js
}

func TestCounterCompletion(t *testing.T) {
	for _, n := range []int{0, 1, 2, 17, 200} {
		js := newTestSystem(t, 4)
		counter := NewJobCounter()
		var ran atomic.Int64

		for i := 0; i < n; i++ {
			err := js.SubmitWithCounter(func() { ran.Add(1) }, counter, Normal)
			require.NoError(t, err)
		}
		counter.Wait()

		assert.True(t, counter.IsComplete())
		assert.EqualValues(t, n, ran.Load())
	}
}

func TestPriorityOrder(t *testing.T) {
	js := newTestSystem(t, 1)

	var mu sync.Mutex
	var order []string

	record := func(name string) Job {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	// Block the single worker so all three jobs queue up before any run.
	gate := make(chan struct{})
	_, err := js.Submit(func() { <-gate }, Critical)
	require.NoError(t, err)

	counter := NewJobCounter()
	require.NoError(t, js.SubmitWithCounter(record("L"), counter, Low))
	require.NoError(t, js.SubmitWithCounter(record("C"), counter, Critical))
	require.NoError(t, js.SubmitWithCounter(record("N"), counter, Normal))

	close(gate)
	counter.Wait()

	assert.Equal(t, []string{"C", "N", "L"}, order)
}

func TestParallelForTotality(t *testing.T) {
	js := newTestSystem(t, 4)
	const k = 10_000
	seen := make([]int32, k)

	js.ParallelFor(0, k, 37, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})

	for i, v := range seen {
		require.EqualValuesf(t, 1, v, "index %d visited %d times", i, v)
	}
}

func TestParallelForSmallRangeInline(t *testing.T) {
	js := newTestSystem(t, 4)
	var count int
	js.ParallelFor(0, 3, 10, func(i int) { count++ })
	assert.Equal(t, 3, count)
}

func TestExceptionSafety(t *testing.T) {
	js := newTestSystem(t, 2)
	counter := NewJobCounter()

	err := js.SubmitWithCounter(func() {
		panic("boom")
	}, counter, Normal)
	require.NoError(t, err)

	counter.Wait()
	assert.True(t, counter.IsComplete())

	h, err := js.Submit(func() { panic("also boom") }, Normal)
	require.NoError(t, err)
	h.Wait()
	assert.True(t, h.IsComplete())
}

func TestSubmitBeforeInitializeOrAfterShutdown(t *testing.T) {
	js := New()
	_, err := js.Submit(func() {}, Normal)
	assert.Error(t, err)

	js.Initialize(Config{WorkerThreads: 1, EnablePriorities: true})
	js.Shutdown()

	_, err = js.Submit(func() {}, Normal)
	assert.Error(t, err)
}

func TestReinitializeWithoutShutdownIsNoOp(t *testing.T) {
	js := New()
	js.Initialize(Config{WorkerThreads: 2})
	defer js.Shutdown()

	first := js.WorkerCount()
	js.Initialize(Config{WorkerThreads: 99})
	assert.Equal(t, first, js.WorkerCount())
}

func TestSubmitAndWait(t *testing.T) {
	js := newTestSystem(t, 4)
	var total atomic.Int64
	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = func() { total.Add(1) }
	}
	require.NoError(t, js.SubmitAndWait(jobs, Normal))
	assert.EqualValues(t, 50, total.Load())
}

// TestYieldAndProcess exercises the pop-and-run-on-caller path directly
// against the queue, without starting any worker goroutines, so the test
// can assert the job ran synchronously on the calling goroutine.
func TestYieldAndProcess(t *testing.T) {
	js := New()
	js.cond = sync.NewCond(&js.mu)
	js.running = true
	js.cfg = Config{EnablePriorities: true}
	js.log = elog.NewNopLogger()

	ran := false
	require.NoError(t, js.enqueue(&prioritizedJob{job: func() { ran = true }, priority: Normal}))

	assert.True(t, js.YieldAndProcess())
	assert.True(t, ran)
	assert.False(t, js.YieldAndProcess())
}

// S1 — bursty parallel map, repeated to confirm deterministic totality.
func TestBurstyParallelMapIsDeterministic(t *testing.T) {
	js := newTestSystem(t, 4)
	const n = 10_000

	for iter := 0; iter < 5; iter++ {
		out := make([]int, n)
		js.ParallelForCount(n, func(i int) {
			out[i] = i * i
		})
		for i := 0; i < n; i++ {
			require.Equal(t, i*i, out[i])
		}
	}
}
