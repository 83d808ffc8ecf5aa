package planner

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/joshharrison/timeloom/internal/interval"
	"github.com/joshharrison/timeloom/internal/task"
)

func dt(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := task.ParseStamp(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func clock(t *testing.T, s string) task.ClockTime {
	t.Helper()
	c, err := task.ParseClock(s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return c
}

func window(t *testing.T, start, end string) task.WorkWindow {
	return task.WorkWindow{Start: clock(t, start), End: clock(t, end)}
}

func TestRun_SplitsAroundBlockedInterval(t *testing.T) {
	req := &task.Request{
		PlanningStart: dt(t, "2026-02-13T18:00:00"),
		Window:        window(t, "18:00", "20:00"),
		Blocked: []task.BlockedInterval{
			{Start: dt(t, "2026-02-13T18:30:00"), End: dt(t, "2026-02-13T19:30:00"), Label: "block"},
		},
		Tasks: []task.Task{
			{ID: "x", Title: "Big task", DurationMin: 50, Deadline: dt(t, "2026-02-13T23:00:00"), Priority: 3},
		},
	}

	rpt, err := Run(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rpt.Schedule) != 2 {
		t.Fatalf("should split around blocked time, got %d blocks: %v", len(rpt.Schedule), rpt.Schedule)
	}

	b1, b2 := rpt.Schedule[0], rpt.Schedule[1]
	if b1.Start != "2026-02-13T18:00:00" || b1.End != "2026-02-13T18:30:00" {
		t.Errorf("first block wrong: %s–%s", b1.Start, b1.End)
	}
	if b2.Start != "2026-02-13T19:30:00" || b2.End != "2026-02-13T19:50:00" {
		t.Errorf("second block wrong: %s–%s", b2.Start, b2.End)
	}
	if b1.Minutes+b2.Minutes != 50 {
		t.Errorf("expected 50 total minutes, got %d", b1.Minutes+b2.Minutes)
	}
	if len(rpt.Warnings) != 0 {
		t.Errorf("expected zero warnings, got %v", rpt.Warnings)
	}
}

func TestRun_OverflowingTaskGetsOneWarning(t *testing.T) {
	// 300 minutes cannot fit before the same-day deadline in a 2-hour
	// window; the task still gets fully scheduled into later days.
	req := &task.Request{
		PlanningStart: dt(t, "2026-02-13T18:00:00"),
		Window:        window(t, "18:00", "20:00"),
		Tasks: []task.Task{
			{ID: "big", Title: "Too big for today", DurationMin: 300, Deadline: dt(t, "2026-02-13T20:00:00"), Priority: 3},
		},
	}

	rpt, err := Run(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := 0
	for _, b := range rpt.Schedule {
		total += b.Minutes
	}
	if total != 300 {
		t.Errorf("task must be fully scheduled, got %d of 300 minutes", total)
	}
	if len(rpt.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", rpt.Warnings)
	}
	if !strings.Contains(rpt.Warnings[0], "big") {
		t.Errorf("warning should name the task, got %q", rpt.Warnings[0])
	}
}

func TestRun_MinuteSumsExact(t *testing.T) {
	req := &task.Request{
		PlanningStart: dt(t, "2026-02-13T18:00:00"),
		Window:        window(t, "18:00", "23:00"),
		Blocked: []task.BlockedInterval{
			{Start: dt(t, "2026-02-13T19:00:00"), End: dt(t, "2026-02-13T20:00:00"), Label: "dinner"},
			{Start: dt(t, "2026-02-14T18:00:00"), End: dt(t, "2026-02-14T19:00:00"), Label: "call"},
		},
		Tasks: []task.Task{
			{ID: "a", Title: "A", DurationMin: 90, Deadline: dt(t, "2026-02-14T23:00:00"), Priority: 3},
			{ID: "b", Title: "B", DurationMin: 240, Deadline: dt(t, "2026-02-15T23:00:00"), Priority: 3, DependsOn: []string{"a"}},
			{ID: "c", Title: "C", DurationMin: 45, Deadline: dt(t, "2026-02-16T23:00:00"), Priority: 3, DependsOn: []string{"b"}},
		},
	}

	rpt, err := Run(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]int{"a": 90, "b": 240, "c": 45}
	got := map[string]int{}
	for _, b := range rpt.Schedule {
		got[b.TaskID] += b.Minutes
	}
	for id, minutes := range want {
		if got[id] != minutes {
			t.Errorf("task %s: scheduled %d minutes, want %d", id, got[id], minutes)
		}
	}
}

func TestRun_NoOverlapsAnywhere(t *testing.T) {
	req := &task.Request{
		PlanningStart: dt(t, "2026-02-13T18:00:00"),
		Window:        window(t, "18:00", "21:00"),
		Blocked: []task.BlockedInterval{
			{Start: dt(t, "2026-02-13T18:30:00"), End: dt(t, "2026-02-13T19:00:00"), Label: "standup"},
			{Start: dt(t, "2026-02-14T20:00:00"), End: dt(t, "2026-02-14T21:00:00"), Label: "gym"},
		},
		Tasks: []task.Task{
			{ID: "a", Title: "A", DurationMin: 120, Deadline: dt(t, "2026-02-14T23:00:00"), Priority: 3},
			{ID: "b", Title: "B", DurationMin: 100, Deadline: dt(t, "2026-02-15T23:00:00"), Priority: 3},
		},
	}

	rpt, err := Run(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type span struct{ start, end time.Time }
	var spans []span
	for _, b := range rpt.Schedule {
		spans = append(spans, span{dt(t, b.Start), dt(t, b.End)})
	}

	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if interval.Overlaps(spans[i].start, spans[i].end, spans[j].start, spans[j].end) {
				t.Errorf("blocks %d and %d overlap", i, j)
			}
		}
		for _, bl := range req.Blocked {
			if interval.Overlaps(spans[i].start, spans[i].end, bl.Start, bl.End) {
				t.Errorf("block %d overlaps blocked interval %s", i, bl.Label)
			}
		}
	}
}

func TestRun_BlocksStayInsideWindow(t *testing.T) {
	req := &task.Request{
		PlanningStart: dt(t, "2026-02-13T18:00:00"),
		Window:        window(t, "18:00", "20:00"),
		Tasks: []task.Task{
			{ID: "long", Title: "Long haul", DurationMin: 330, Deadline: dt(t, "2026-02-20T23:00:00"), Priority: 3},
		},
	}

	rpt, err := Run(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rpt.Schedule) != 3 {
		t.Fatalf("330 minutes over 120-minute days should take 3 blocks, got %d", len(rpt.Schedule))
	}

	for _, b := range rpt.Schedule {
		start := dt(t, b.Start)
		end := dt(t, b.End)
		dayStart := req.Window.Start.On(start)
		dayEnd := req.Window.End.On(start)
		if start.Before(dayStart) || end.After(dayEnd) {
			t.Errorf("block %s–%s escapes window %v–%v", b.Start, b.End, dayStart, dayEnd)
		}
		if start.Day() != end.Day() {
			t.Errorf("block %s–%s crosses midnight", b.Start, b.End)
		}
	}

	// Days advance monotonically.
	for i := 1; i < len(rpt.Schedule); i++ {
		if !dt(t, rpt.Schedule[i].Start).After(dt(t, rpt.Schedule[i-1].End)) {
			t.Errorf("blocks out of chronological order: %v", rpt.Schedule)
		}
	}
}

func TestRun_FullyBlockedDayRollsOver(t *testing.T) {
	req := &task.Request{
		PlanningStart: dt(t, "2026-02-13T18:00:00"),
		Window:        window(t, "18:00", "20:00"),
		Blocked: []task.BlockedInterval{
			{Start: dt(t, "2026-02-13T17:00:00"), End: dt(t, "2026-02-13T21:00:00"), Label: "travel"},
		},
		Tasks: []task.Task{
			{ID: "a", Title: "A", DurationMin: 60, Deadline: dt(t, "2026-02-14T23:00:00"), Priority: 3},
		},
	}

	rpt, err := Run(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rpt.Schedule) != 1 {
		t.Fatalf("expected 1 block, got %v", rpt.Schedule)
	}
	if rpt.Schedule[0].Start != "2026-02-14T18:00:00" {
		t.Errorf("expected placement on the next day at 18:00, got %s", rpt.Schedule[0].Start)
	}
}

func TestRun_Idempotent(t *testing.T) {
	build := func() *task.Request {
		return &task.Request{
			PlanningStart: dt(t, "2026-02-13T18:00:00"),
			Window:        window(t, "18:00", "23:00"),
			Blocked: []task.BlockedInterval{
				{Start: dt(t, "2026-02-13T19:00:00"), End: dt(t, "2026-02-13T19:45:00"), Label: "dinner"},
			},
			Tasks: []task.Task{
				{ID: "a", Title: "A", DurationMin: 60, Deadline: dt(t, "2026-02-13T23:00:00"), Priority: 3},
				{ID: "b", Title: "B", DurationMin: 45, Deadline: dt(t, "2026-02-14T23:00:00"), Priority: 5, DependsOn: []string{"a"}},
			},
		}
	}

	first, err := Run(build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Run(build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("reports differ between identical runs:\n%s\n%s", a, b)
	}
}

func TestRun_ValidationStopsBeforePlacement(t *testing.T) {
	req := &task.Request{
		PlanningStart: dt(t, "2026-02-13T18:00:00"),
		Window:        window(t, "18:00", "23:00"),
		Tasks: []task.Task{
			{ID: "a", Title: "A", DurationMin: 30, Deadline: dt(t, "2026-02-13T23:00:00"), Priority: 3, DependsOn: []string{"missing"}},
		},
	}

	_, err := Run(req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "missing task id") {
		t.Errorf("expected missing task id error, got %v", err)
	}
}

func TestNextWindowStart(t *testing.T) {
	start := clock(t, "18:00")

	// At the window start: stays on today.
	got := nextWindowStart(dt(t, "2026-02-13T18:00:00"), start)
	if !got.Equal(dt(t, "2026-02-13T18:00:00")) {
		t.Errorf("cursor at window start should stay, got %v", got)
	}

	// Before the window start: today's start.
	got = nextWindowStart(dt(t, "2026-02-13T09:15:00"), start)
	if !got.Equal(dt(t, "2026-02-13T18:00:00")) {
		t.Errorf("morning cursor should wait for today's window, got %v", got)
	}

	// Past the window start: tomorrow's start.
	got = nextWindowStart(dt(t, "2026-02-13T18:01:00"), start)
	if !got.Equal(dt(t, "2026-02-14T18:00:00")) {
		t.Errorf("late cursor should move to tomorrow, got %v", got)
	}
}
