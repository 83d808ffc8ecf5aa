// Package request is the input boundary: it reads a planning request from
// a JSON or YAML file and turns it into the engine's Request value. The
// engine itself never touches storage.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/joshharrison/timeloom/internal/task"
)

// Defaults applied when the request omits them.
const (
	DefaultWindowStart = "18:00"
	DefaultWindowEnd   = "23:00"
	DefaultPriority    = 3
)

// Load reads a request file. Files ending in .yaml/.yml are converted to
// JSON and parsed through the same path as native JSON requests.
func Load(path string) (*task.Request, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("input file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse YAML request: %w", err)
		}
	}

	return Parse(data)
}

// Parse decodes a JSON request into the engine's Request value, applying
// defaults and rejecting malformed fields before any scheduling work.
func Parse(data []byte) (*task.Request, error) {
	if !gjson.ValidBytes(data) {
		return nil, task.Validationf("request is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	ps := root.Get("planning_start")
	if !ps.Exists() {
		return nil, task.Validationf("request is missing planning_start")
	}
	planningStart, err := task.ParseStamp(ps.String())
	if err != nil {
		return nil, task.Validationf("planning_start: %v", err)
	}

	window, err := parseWindow(root)
	if err != nil {
		return nil, err
	}

	req := &task.Request{
		PlanningStart: planningStart,
		Window:        window,
	}

	for _, b := range root.Get("blocked").Array() {
		start, err := task.ParseStamp(b.Get("start").String())
		if err != nil {
			return nil, task.Validationf("blocked interval start: %v", err)
		}
		end, err := task.ParseStamp(b.Get("end").String())
		if err != nil {
			return nil, task.Validationf("blocked interval end: %v", err)
		}
		label := b.Get("label").String()
		if label == "" {
			label = "blocked"
		}
		if !end.After(start) {
			return nil, task.Validationf("blocked interval %q ends before it starts", label)
		}
		req.Blocked = append(req.Blocked, task.BlockedInterval{Start: start, End: end, Label: label})
	}

	for _, raw := range root.Get("tasks").Array() {
		t := task.Task{
			ID:          strings.TrimSpace(raw.Get("id").String()),
			Title:       strings.TrimSpace(raw.Get("title").String()),
			DurationMin: int(raw.Get("duration_min").Int()),
			Priority:    DefaultPriority,
		}
		if p := raw.Get("priority"); p.Exists() {
			t.Priority = int(p.Int())
		}
		deadline, err := task.ParseStamp(raw.Get("deadline").String())
		if err != nil {
			return nil, task.Validationf("task %s deadline: %v", t.ID, err)
		}
		t.Deadline = deadline
		for _, dep := range raw.Get("depends_on").Array() {
			t.DependsOn = append(t.DependsOn, dep.String())
		}
		req.Tasks = append(req.Tasks, t)
	}

	return req, nil
}

func parseWindow(root gjson.Result) (task.WorkWindow, error) {
	startStr := DefaultWindowStart
	if v := root.Get("work_window.start"); v.Exists() {
		startStr = v.String()
	}
	endStr := DefaultWindowEnd
	if v := root.Get("work_window.end"); v.Exists() {
		endStr = v.String()
	}

	start, err := task.ParseClock(startStr)
	if err != nil {
		return task.WorkWindow{}, task.Validationf("work_window.start: %v", err)
	}
	end, err := task.ParseClock(endStr)
	if err != nil {
		return task.WorkWindow{}, task.Validationf("work_window.end: %v", err)
	}
	// Overnight windows are out of scope; reject rather than guess.
	if !start.Before(end) {
		return task.WorkWindow{}, task.Validationf("work_window end %s is not after start %s", end, start)
	}

	return task.WorkWindow{Start: start, End: end}, nil
}

// yamlToJSON re-encodes a YAML document as JSON so both request formats
// share one parse path.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
