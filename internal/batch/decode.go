// Package batch decodes task batches at the service boundary: bare JSON
// lists or {"tasks": [...], "strategy": "..."} objects, with string or
// numeric ids.
package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
)

// ErrInvalidPayload is returned when the body is neither a task list nor a
// wrapped batch.
var ErrInvalidPayload = errors.New(`invalid payload: send a JSON list of tasks or {"tasks": [...]}`)

// ID accepts a JSON string or number and keeps it as a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("must be a string or number")
	}
	*id = ID(n.String())
	return nil
}

type taskPayload struct {
	ID             *ID      `json:"id"`
	Title          string   `json:"title"`
	DueDate        *string  `json:"due_date"`
	Importance     *float64 `json:"importance"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Dependencies   []ID     `json:"dependencies"`
}

type batchPayload struct {
	Tasks    json.RawMessage `json:"tasks"`
	Strategy *string         `json:"strategy"`
}

// ValidationError lists per-task field problems.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid task data: " + strings.Join(e.Errors, "; ")
}

// Decode accepts either a bare task list or {"tasks": [...], "strategy": "..."}.
// The strategy returned is the body's when present, else fallback.
func Decode(body []byte, fallback string) ([]scoring.Task, string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, "", ErrInvalidPayload
	}

	strategy := fallback
	raw := body
	switch body[0] {
	case '[':
	case '{':
		var bp batchPayload
		if err := json.Unmarshal(body, &bp); err != nil {
			return nil, "", ErrInvalidPayload
		}
		if len(bp.Tasks) == 0 {
			return nil, "", ErrInvalidPayload
		}
		raw = bp.Tasks
		if bp.Strategy != nil {
			strategy = *bp.Strategy
		}
	default:
		return nil, "", ErrInvalidPayload
	}

	tasks, err := DecodeTasks(raw)
	if err != nil {
		return nil, "", err
	}
	return tasks, strategy, nil
}

// DecodeTasks parses a JSON task list, applying the boundary validation:
// id is required and importance must be an integer in [1,10].
func DecodeTasks(raw []byte) ([]scoring.Task, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrInvalidPayload
	}

	verr := &ValidationError{}
	tasks := make([]scoring.Task, 0, len(items))
	for i, item := range items {
		var p taskPayload
		if err := json.Unmarshal(item, &p); err != nil {
			verr.Errors = append(verr.Errors, fmt.Sprintf("tasks[%d]: %v", i, err))
			continue
		}
		t, problems := p.toTask()
		for _, msg := range problems {
			verr.Errors = append(verr.Errors, fmt.Sprintf("tasks[%d].%s", i, msg))
		}
		tasks = append(tasks, t)
	}
	if len(verr.Errors) > 0 {
		return nil, verr
	}
	return tasks, nil
}

func (p taskPayload) toTask() (scoring.Task, []string) {
	var problems []string
	t := scoring.Task{Title: p.Title}

	if p.ID == nil || *p.ID == "" {
		problems = append(problems, "id: this field is required")
	} else {
		t.ID = string(*p.ID)
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Importance != nil {
		v := *p.Importance
		switch {
		case v != math.Trunc(v):
			problems = append(problems, "importance: must be an integer")
		case v < 1 || v > 10:
			problems = append(problems, "importance: must be between 1 and 10")
		default:
			n := int(v)
			t.Importance = &n
		}
	}
	if p.EstimatedHours != nil {
		h := *p.EstimatedHours
		t.EstimatedHours = &h
	}
	for _, d := range p.Dependencies {
		t.Dependencies = append(t.Dependencies, string(d))
	}
	return t, problems
}
