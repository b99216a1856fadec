// Package doctor runs diagnostic checks over the local setup and the
// configured backend.
package doctor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultCheckTimeout bounds a single check when RunAll is given no timeout.
const DefaultCheckTimeout = 10 * time.Second

// Status represents the result status of a check item.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is a single line within a check result.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result is the outcome of one check.
type Result struct {
	Name    string        `json:"name"`
	Items   []CheckItem   `json:"items"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Check defines the interface for a doctor check.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Tally aggregates item statuses across results.
type Tally struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"-"`
}

// Healthy reports whether no item failed.
func (t Tally) Healthy() bool { return t.Failed == 0 }

// RunAll executes checks concurrently, each bounded by timeout, and returns
// their results in input order. A check that overruns its deadline yields a
// single failing item.
func RunAll(ctx context.Context, checks []Check, timeout time.Duration) []Result {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	results := make([]Result, len(checks))

	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = runOne(ctx, check, timeout)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runOne(ctx context.Context, check Check, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan Result, 1)
	go func() { done <- check.Run(ctx) }()

	var res Result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = Result{
			Name: check.Name(),
			Items: []CheckItem{{
				Label:  "timed out",
				Status: StatusFail,
				Detail: fmt.Sprintf("no answer within %s", timeout),
			}},
		}
	}

	if res.Name == "" {
		res.Name = check.Name()
	}
	res.Elapsed = time.Since(start)
	return res
}

// Summarize counts item statuses across results. Fixable counts only warn
// and fail items that an autofix run could repair.
func Summarize(results []Result) Tally {
	var t Tally
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				t.Passed++
				continue
			case StatusWarn:
				t.Warned++
			case StatusFail:
				t.Failed++
			}
			if item.Fixable {
				t.Fixable++
			}
		}
	}
	return t
}
