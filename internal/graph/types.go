package graph

import "github.com/joshharrison/timeloom/internal/task"

// TaskSet is a validated collection of tasks. IDs preserves the input
// order so downstream traversal and cycle reporting stay deterministic.
type TaskSet struct {
	ByID map[string]*task.Task
	IDs  []string
}

// TaskCount returns the number of tasks in the set.
func (ts *TaskSet) TaskCount() int {
	return len(ts.ByID)
}
