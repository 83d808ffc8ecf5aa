package graph

import (
	"github.com/joshharrison/timeloom/internal/task"
)

// Validate checks structural well-formedness of the task list and returns
// a TaskSet, or the first violation found as a ValidationError. The checks
// run in a fixed precedence: empty list, empty id, duplicate id,
// non-positive duration, empty title, then per-dependency missing target
// and self-dependency. No partial set is returned on failure.
func Validate(tasks []task.Task) (*TaskSet, error) {
	if len(tasks) == 0 {
		return nil, task.Validationf("no tasks provided")
	}

	ts := &TaskSet{
		ByID: make(map[string]*task.Task, len(tasks)),
	}

	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return nil, task.Validationf("task has empty id")
		}
		if _, dup := ts.ByID[t.ID]; dup {
			return nil, task.Validationf("duplicate task id: %s", t.ID)
		}
		if t.DurationMin <= 0 {
			return nil, task.Validationf("task %s has non-positive duration_min", t.ID)
		}
		if t.Title == "" {
			return nil, task.Validationf("task %s has empty title", t.ID)
		}
		ts.ByID[t.ID] = t
		ts.IDs = append(ts.IDs, t.ID)
	}

	for i := range tasks {
		t := &tasks[i]
		for _, dep := range t.DependsOn {
			if _, ok := ts.ByID[dep]; !ok {
				return nil, task.Validationf("task %s depends on missing task id: %s", t.ID, dep)
			}
			if dep == t.ID {
				return nil, task.Validationf("task %s depends on itself", t.ID)
			}
		}
	}

	return ts, nil
}

// DetectCycle returns nil if the dependency graph is acyclic, or a
// CycleError carrying the offending path. Uses DFS with coloring: white
// (unvisited), gray (in progress), black (done). A dependency edge into a
// gray node is a back edge; the cycle is rebuilt by walking DFS parents
// from the current node back to the back-edge target and reversing.
func (ts *TaskSet) DetectCycle() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(ts.ByID))
	parent := make(map[string]string, len(ts.ByID))

	var dfs func(u string) error
	dfs = func(u string) error {
		color[u] = gray
		for _, v := range ts.ByID[u].DependsOn {
			switch color[v] {
			case white:
				parent[v] = u
				if err := dfs(v); err != nil {
					return err
				}
			case gray:
				cycle := []string{v}
				for cur := u; cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return &task.CycleError{Path: cycle}
			}
		}
		color[u] = black
		return nil
	}

	// Input order, so the reported cycle is stable for a given request.
	for _, id := range ts.IDs {
		if color[id] == white {
			if err := dfs(id); err != nil {
				return err
			}
		}
	}
	return nil
}
