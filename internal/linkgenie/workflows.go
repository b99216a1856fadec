package linkgenie

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/riccilnl/linkgenie/internal/core/eventbus"
	"github.com/riccilnl/linkgenie/internal/core/workflow"
)

// WorkflowService lists, reorders and toggles backend workflows.
type WorkflowService struct {
	store workflow.Store
	bus   *eventbus.EventBus
	log   zerolog.Logger
}

// NewWorkflowService creates a WorkflowService.
func NewWorkflowService(store workflow.Store, bus *eventbus.EventBus, log zerolog.Logger) *WorkflowService {
	return &WorkflowService{store: store, bus: bus, log: log}
}

// List returns workflows in execution order: priority, then id.
func (s *WorkflowService) List(ctx context.Context) ([]workflow.Workflow, error) {
	list, err := s.store.Workflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	slices.SortStableFunc(list, func(a, b workflow.Workflow) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return a.ID - b.ID
	})
	return list, nil
}

// Move relocates the workflow at position from to position to (both zero
// based, in execution order) and rewrites every priority. It returns the
// reordered list and how many workflows were saved.
func (s *WorkflowService) Move(ctx context.Context, from, to int) ([]workflow.Workflow, int, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	moved, err := workflow.Move(list, from, to)
	if err != nil {
		return nil, 0, err
	}

	applied, err := workflow.Reprioritize(ctx, s.store, moved)

	if s.bus != nil {
		s.bus.PublishWorkflowReordered(eventbus.WorkflowReorderedPayload{
			WorkflowID: moved[to].ID,
			Name:       moved[to].Name,
			From:       from,
			To:         to,
			Applied:    applied,
			Err:        err,
		})
	}

	if err != nil {
		s.log.Error().Err(err).Int("applied", applied).Msg("workflow reorder incomplete")
		return moved, applied, err
	}

	s.log.Info().Int("workflow_id", moved[to].ID).Int("from", from).Int("to", to).Msg("workflow moved")
	return moved, applied, nil
}

// Toggle flips the enabled flag of a workflow.
func (s *WorkflowService) Toggle(ctx context.Context, id int) (workflow.Workflow, error) {
	w, err := s.store.ToggleWorkflow(ctx, id)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("toggle workflow %d: %w", id, err)
	}
	return w, nil
}

// Apply runs workflow id against bookmarkIDs, or against every bookmark when
// bookmarkIDs is empty. It returns the number of bookmarks submitted.
func (s *WorkflowService) Apply(ctx context.Context, id int, bookmarkIDs []int, all func(context.Context) ([]int, error)) (int, error) {
	if len(bookmarkIDs) == 0 {
		ids, err := all(ctx)
		if err != nil {
			return 0, fmt.Errorf("collect bookmarks: %w", err)
		}
		bookmarkIDs = ids
	}
	if len(bookmarkIDs) == 0 {
		return 0, nil
	}

	if err := s.store.ApplyWorkflows(ctx, []int{id}, bookmarkIDs); err != nil {
		return 0, fmt.Errorf("apply workflow %d: %w", id, err)
	}

	s.log.Info().Int("workflow_id", id).Int("bookmarks", len(bookmarkIDs)).Msg("workflow applied")
	return len(bookmarkIDs), nil
}
