// Package order produces the deterministic topological ordering that the
// block placer consumes. Among tasks with no unmet dependency, the next
// task is the one with the smallest (deadline, -priority, id) key.
package order

import (
	"container/heap"
	"fmt"

	"github.com/joshharrison/timeloom/internal/graph"
	"github.com/joshharrison/timeloom/internal/task"
)

// Sequence runs Kahn's algorithm over the validated task set and returns
// every task id exactly once, each dependency before its dependents. The
// ready set is a priority queue keyed (deadline asc, priority desc, id
// asc), so the order is a pure function of the input.
//
// A short result means a cycle slipped past detection; that is a logic
// bug, not a recoverable condition, and is returned as a plain error.
func Sequence(ts *graph.TaskSet) ([]string, error) {
	indeg := make(map[string]int, len(ts.ByID))
	children := make(map[string][]string, len(ts.ByID))
	for _, id := range ts.IDs {
		indeg[id] = len(ts.ByID[id].DependsOn)
		for _, dep := range ts.ByID[id].DependsOn {
			// edge dep -> id: dep must be fully scheduled first
			children[dep] = append(children[dep], id)
		}
	}

	ready := &readyQueue{}
	for _, id := range ts.IDs {
		if indeg[id] == 0 {
			ready.items = append(ready.items, ts.ByID[id])
		}
	}
	heap.Init(ready)

	out := make([]string, 0, len(ts.IDs))
	for ready.Len() > 0 {
		u := heap.Pop(ready).(*task.Task)
		out = append(out, u.ID)
		for _, v := range children[u.ID] {
			indeg[v]--
			if indeg[v] == 0 {
				heap.Push(ready, ts.ByID[v])
			}
		}
	}

	if len(out) != len(ts.ByID) {
		return nil, fmt.Errorf("topological order incomplete: %d of %d tasks ordered (cycle slipped past detection)", len(out), len(ts.ByID))
	}
	return out, nil
}

// readyQueue is a min-heap of ready tasks ordered by
// (deadline, -priority, id).
type readyQueue struct {
	items []*task.Task
}

func (q *readyQueue) Len() int { return len(q.items) }

func (q *readyQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if !a.Deadline.Equal(b.Deadline) {
		return a.Deadline.Before(b.Deadline)
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}

func (q *readyQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *readyQueue) Push(x interface{}) {
	q.items = append(q.items, x.(*task.Task))
}

func (q *readyQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}
