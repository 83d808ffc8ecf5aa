// Package planner is the engine: it validates the request, orders the
// tasks, and carves each task's minutes out of the recurring work window.
package planner

import (
	"time"

	"github.com/joshharrison/timeloom/internal/graph"
	"github.com/joshharrison/timeloom/internal/interval"
	"github.com/joshharrison/timeloom/internal/order"
	"github.com/joshharrison/timeloom/internal/report"
	"github.com/joshharrison/timeloom/internal/task"
)

// Run executes one full planning pass over the request snapshot:
// validate, detect cycles, sequence, place blocks, build the report.
// The result is a pure function of the request — no clock, no randomness.
func Run(req *task.Request) (*report.Report, error) {
	ts, err := graph.Validate(req.Tasks)
	if err != nil {
		return nil, err
	}
	if err := ts.DetectCycle(); err != nil {
		return nil, err
	}
	ids, err := order.Sequence(ts)
	if err != nil {
		return nil, err
	}

	blocks := Place(ids, ts, req.Window, req.Blocked, req.PlanningStart)
	return report.Build(req, ids, ts.ByID, blocks), nil
}

// Place allocates each task's duration into available segments, in the
// given order, splitting across segments and days as needed. The cursor
// only moves forward, so blocks never overlap each other or any blocked
// interval, and every block lies inside a day's work window.
func Place(ids []string, ts *graph.TaskSet, window task.WorkWindow, blocked []task.BlockedInterval, planningStart time.Time) []task.ScheduledBlock {
	var scheduled []task.ScheduledBlock
	cursor := planningStart

	for _, id := range ids {
		t := ts.ByID[id]
		remaining := t.DurationMin

		for remaining > 0 {
			ws := nextWindowStart(cursor, window.Start)
			we := window.End.On(ws)

			segments := interval.Clip(ws, we, blocked)

			placed := false
			for _, seg := range segments {
				start := seg.Start
				if cursor.After(start) {
					start = cursor
				}
				if !start.Before(seg.End) {
					continue
				}

				avail := int(seg.End.Sub(start) / time.Minute)
				if avail <= 0 {
					continue
				}

				use := remaining
				if avail < use {
					use = avail
				}
				end := start.Add(time.Duration(use) * time.Minute)

				scheduled = append(scheduled, task.ScheduledBlock{
					TaskID: t.ID,
					Title:  t.Title,
					Start:  start,
					End:    end,
				})
				remaining -= use
				cursor = end
				placed = true
				if remaining == 0 {
					break
				}
			}

			if !placed {
				// No room today; move just past the window and retry,
				// which lands on the next day's window start.
				cursor = we.Add(time.Minute)
			}
		}
	}

	return scheduled
}

// nextWindowStart returns the first valid window start at or after the
// cursor. A cursor at or before today's window start stays on today;
// anything later moves to tomorrow's window start.
func nextWindowStart(cursor time.Time, start task.ClockTime) time.Time {
	candidate := start.On(cursor)
	if !cursor.After(candidate) {
		return candidate
	}
	return start.On(cursor.AddDate(0, 0, 1))
}
