// Package report assembles the final schedule value handed to the
// boundary layer. Deadline overruns become warnings, never errors.
package report

import (
	"fmt"

	"github.com/joshharrison/timeloom/internal/task"
)

// Report is the complete output of one planning run.
type Report struct {
	PlanningStart string   `json:"planning_start"`
	WorkWindow    Window   `json:"work_window"`
	TaskOrder     []string `json:"task_order"`
	Schedule      []Block  `json:"schedule"`
	Warnings      []string `json:"warnings"`
}

// Window is the daily work window in "HH:MM" form.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Block is one scheduled slice of a task.
type Block struct {
	TaskID  string `json:"task_id"`
	Title   string `json:"title"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Minutes int    `json:"minutes"`
}

// Build aggregates the placed blocks into a Report and computes one
// warning per task whose last block ends after its deadline. Warnings are
// advisory; a schedule with warnings is still complete and valid.
func Build(req *task.Request, ids []string, byID map[string]*task.Task, blocks []task.ScheduledBlock) *Report {
	r := &Report{
		PlanningStart: task.FormatStamp(req.PlanningStart),
		WorkWindow: Window{
			Start: req.Window.Start.String(),
			End:   req.Window.End.String(),
		},
		TaskOrder: ids,
		Schedule:  make([]Block, 0, len(blocks)),
		Warnings:  []string{},
	}

	lastEnd := make(map[string]task.ScheduledBlock, len(ids))
	for _, b := range blocks {
		r.Schedule = append(r.Schedule, Block{
			TaskID:  b.TaskID,
			Title:   b.Title,
			Start:   task.FormatStamp(b.Start),
			End:     task.FormatStamp(b.End),
			Minutes: b.Minutes(),
		})
		lastEnd[b.TaskID] = b
	}

	for _, id := range ids {
		t := byID[id]
		final, ok := lastEnd[id]
		if ok && final.End.After(t.Deadline) {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("Task %s finishes at %s after its deadline %s.",
					id, task.FormatStamp(final.End), task.FormatStamp(t.Deadline)))
		}
	}

	return r
}
