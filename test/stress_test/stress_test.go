package stresstest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentDispatchAndRuleChurn fans out concurrent HTTP dispatch
// calls against a shared Function while a second set of goroutines
// concurrently adds and removes rules, the way the teacher's own
// stress_test submodule load-tests its VM through echo. Every dispatch
// response must be a 200 with a non-empty body (the "unclassified"
// default or a churned rule's label) or a 409 carrying the
// NoApplicableMethods/Ambiguous error message — never an empty body or
// any other status. Which label comes back is not checked.
func TestConcurrentDispatchAndRuleChurn(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := NewServer()
	ts := NewTestServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const (
		dispatchers = 16
		churners    = 4
		iterations  = 200
	)

	var group errgroup.Group

	for i := 0; i < dispatchers; i++ {
		i := i
		group.Go(func() error {
			return dispatchLoop(ctx, ts.URL, i, iterations)
		})
	}

	for i := 0; i < churners; i++ {
		i := i
		group.Go(func() error {
			return churnLoop(ctx, ts.URL, i, iterations)
		})
	}

	if err := group.Wait(); err != nil {
		t.Fatal(err)
	}
}

func dispatchLoop(ctx context.Context, baseURL string, worker, iterations int) error {
	client := &http.Client{Timeout: 2 * time.Second}
	for i := 0; i < iterations; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n := worker*iterations + i
		url := fmt.Sprintf("%s/dispatch/%d", baseURL, n)
		resp, err := client.Get(url)
		if err != nil {
			return fmt.Errorf("dispatch worker %d: %w", worker, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("dispatch worker %d: read body: %w", worker, err)
		}
		switch resp.StatusCode {
		case http.StatusOK:
			if len(body) == 0 {
				return fmt.Errorf("dispatch worker %d: empty 200 body for n=%d", worker, n)
			}
		case http.StatusConflict:
			// NoApplicableMethods/AmbiguousMethods surfaced as an error
			// action; valid so long as it carries a message.
			if len(body) == 0 {
				return fmt.Errorf("dispatch worker %d: empty conflict body for n=%d", worker, n)
			}
		default:
			return fmt.Errorf("dispatch worker %d: unexpected status %d for n=%d: %s", worker, resp.StatusCode, n, body)
		}
	}
	return nil
}

func churnLoop(ctx context.Context, baseURL string, worker, iterations int) error {
	client := &http.Client{Timeout: 2 * time.Second}
	for i := 0; i < iterations; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		label := fmt.Sprintf("w%d-r%d", worker, i)

		addReq, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/rule/%s", baseURL, label), nil)
		if err != nil {
			return err
		}
		if _, err := client.Do(addReq); err != nil {
			return fmt.Errorf("churn worker %d: add: %w", worker, err)
		}

		delReq, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/rule/%s", baseURL, label), nil)
		if err != nil {
			return err
		}
		if _, err := client.Do(delReq); err != nil {
			return fmt.Errorf("churn worker %d: remove: %w", worker, err)
		}
	}
	return nil
}
