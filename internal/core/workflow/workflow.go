// Package workflow defines backend automation rules and client side
// priority ordering.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrIndexOutOfRange is returned by Move for an invalid position.
var ErrIndexOutOfRange = errors.New("workflow index out of range")

// Workflow is an automation rule evaluated by the backend when bookmarks are
// saved. Lower Priority values run first.
type Workflow struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Enabled        bool      `json:"enabled"`
	Priority       int       `json:"priority"`
	ConditionLogic string    `json:"condition_logic"` // OR or AND
	Triggers       []Trigger `json:"triggers"`
	Actions        []Action  `json:"actions"`
	DateAdded      time.Time `json:"date_added"`
	DateModified   time.Time `json:"date_modified"`
	MatchCount     int       `json:"match_count"`
}

// Trigger decides whether a workflow applies, e.g. url_match or keyword_match.
type Trigger struct {
	ID          int            `json:"id,omitempty"`
	WorkflowID  int            `json:"workflow_id,omitempty"`
	TriggerType string         `json:"trigger_type"`
	Config      map[string]any `json:"config"`
}

// Action is executed on matching bookmarks, e.g. move_to_folder.
type Action struct {
	ID         int            `json:"id,omitempty"`
	WorkflowID int            `json:"workflow_id,omitempty"`
	ActionType string         `json:"action_type"`
	Config     map[string]any `json:"config"`
}

// Update is the request body for replacing a workflow definition.
type Update struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Enabled        bool      `json:"enabled"`
	Priority       int       `json:"priority"`
	ConditionLogic string    `json:"condition_logic"`
	Triggers       []Trigger `json:"triggers"`
	Actions        []Action  `json:"actions"`
}

// ToUpdate copies the editable fields of w. Server assigned ids on triggers
// and actions are dropped.
func (w Workflow) ToUpdate() Update {
	u := Update{
		Name:           w.Name,
		Description:    w.Description,
		Enabled:        w.Enabled,
		Priority:       w.Priority,
		ConditionLogic: w.ConditionLogic,
		Triggers:       make([]Trigger, len(w.Triggers)),
		Actions:        make([]Action, len(w.Actions)),
	}
	for i, t := range w.Triggers {
		u.Triggers[i] = Trigger{TriggerType: t.TriggerType, Config: t.Config}
	}
	for i, a := range w.Actions {
		u.Actions[i] = Action{ActionType: a.ActionType, Config: a.Config}
	}
	return u
}

// Updater persists workflow definitions.
type Updater interface {
	UpdateWorkflow(ctx context.Context, id int, u Update) (Workflow, error)
}

// Store is the workflow surface of the backend.
type Store interface {
	Updater
	Workflows(ctx context.Context) ([]Workflow, error)
	ToggleWorkflow(ctx context.Context, id int) (Workflow, error)
	// ApplyWorkflows runs the given workflows against existing bookmarks.
	ApplyWorkflows(ctx context.Context, workflowIDs, bookmarkIDs []int) error
}

// Move returns a copy of list with the element at from relocated to to.
func Move(list []Workflow, from, to int) ([]Workflow, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, fmt.Errorf("%w: move %d -> %d in %d workflows", ErrIndexOutOfRange, from, to, len(list))
	}

	out := make([]Workflow, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)

	moved := list[from]
	out = append(out[:to], append([]Workflow{moved}, out[to:]...)...)
	return out, nil
}

// Reprioritize assigns each workflow its index as priority and saves them
// one at a time in order. It stops at the first failure and returns the
// number of workflows saved before it.
func Reprioritize(ctx context.Context, u Updater, list []Workflow) (int, error) {
	for i := range list {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		list[i].Priority = i
		if _, err := u.UpdateWorkflow(ctx, list[i].ID, list[i].ToUpdate()); err != nil {
			return i, fmt.Errorf("update workflow %d: %w", list[i].ID, err)
		}
	}
	return len(list), nil
}

// IndexOf returns the position of the workflow with the given id, or -1.
func IndexOf(list []Workflow, id int) int {
	for i, w := range list {
		if w.ID == id {
			return i
		}
	}
	return -1
}
