package jobsystem

import "container/heap"

// Job is the callable a caller submits: no args, no return, matching
// spec.md §3's "callable (no args, no return)".
type Job func()

// prioritizedJob pairs a Job with its priority, handle and optional counter.
// The queue orders strictly by priority; within the same priority, order is
// arbitrary (spec.md §3).
type prioritizedJob struct {
	job      Job
	priority Priority
	handle   *JobHandle
	counter  *JobCounter
	seq      uint64 // submission sequence, used only to break heap ties deterministically
}

// jobHeap is a container/heap.Interface ordered by (priority desc, seq asc):
// higher priorities always pop first, and equal-priority ties resolve to
// submission order, although the queue makes no promise about that order.
type jobHeap []*prioritizedJob

func (h jobHeap) Len() int { return len(h) }
func (h jobHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(*prioritizedJob))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*jobHeap)(nil)
