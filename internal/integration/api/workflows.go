package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/riccilnl/linkgenie/internal/core/workflow"
)

var _ workflow.Store = (*Client)(nil)

func workflowPath(id int) string {
	return "/api/workflows/" + strconv.Itoa(id)
}

// Workflows lists all workflows.
func (c *Client) Workflows(ctx context.Context) ([]workflow.Workflow, error) {
	return get[[]workflow.Workflow](ctx, c, request{
		method: http.MethodGet,
		path:   "/api/workflows/",
	})
}

// UpdateWorkflow replaces a workflow definition.
func (c *Client) UpdateWorkflow(ctx context.Context, id int, u workflow.Update) (workflow.Workflow, error) {
	var out workflow.Workflow
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   workflowPath(id),
		body:   u,
	}, &out)
	return out, err
}

// ToggleWorkflow flips the enabled flag of a workflow.
func (c *Client) ToggleWorkflow(ctx context.Context, id int) (workflow.Workflow, error) {
	var out workflow.Workflow
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   workflowPath(id) + "/toggle",
	}, &out)
	return out, err
}

type applyRequest struct {
	WorkflowIDs []int `json:"workflow_ids"`
	BookmarkIDs []int `json:"bookmark_ids"`
}

// ApplyWorkflows runs workflows against existing bookmarks. The backend
// finishes the run before it responds.
func (c *Client) ApplyWorkflows(ctx context.Context, workflowIDs, bookmarkIDs []int) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/workflows/apply",
		body:   applyRequest{WorkflowIDs: workflowIDs, BookmarkIDs: bookmarkIDs},
	}, nil)
}
