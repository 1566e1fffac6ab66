// Package stresstest exposes a generic function over HTTP so the stress
// test can hammer dispatch the way the teacher's own stress_test submodule
// load-tests its Python VM through labstack/echo — same shape, new payload:
// here the concurrent traffic is dispatch calls and rule churn on a
// pkg/gf.Function, not Python source evaluation.
package stresstest

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"sync"

	"github.com/cerevo/PEAK-Rules/pkg/gf"
	"github.com/labstack/echo/v4"
)

// newBucketFunction builds "bucket", the dispatch-on-int-class generic
// function under stress: it answers with the label of whichever Primary
// rule is registered for the int class, falling back to the
// clone-as-default "unclassified" body.
func newBucketFunction() *gf.Function {
	return gf.New("bucket", func(args ...any) (any, error) {
		return "unclassified", nil
	})
}

// Server wraps a bucket Function behind three routes: GET /dispatch/:n
// dispatches n and returns the selected action's result; POST /rule/:label
// adds a Primary rule keyed off an arbitrary int signature so concurrent
// requests can be interleaved with registry churn; DELETE /rule/:label
// removes it. Handles are tracked by label so the test can remove exactly
// the rule it added.
type Server struct {
	Echo *echo.Echo
	fn   *gf.Function

	mu      sync.Mutex
	handles map[string]gf.RuleHandle
}

func NewServer() *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Echo:    e,
		fn:      newBucketFunction(),
		handles: map[string]gf.RuleHandle{},
	}

	e.GET("/dispatch/:n", s.handleDispatch)
	e.POST("/rule/:label", s.handleAddRule)
	e.DELETE("/rule/:label", s.handleRemoveRule)
	return s
}

func (s *Server) handleDispatch(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		return c.String(http.StatusBadRequest, "n must be an int")
	}
	result, err := s.fn.Call(n)
	if err != nil {
		return c.String(http.StatusConflict, err.Error())
	}
	return c.String(http.StatusOK, result.(string))
}

// handleAddRule installs a Primary rule matching the exact int class
// (every int shares one reflect.Type, so this is intentionally a broad
// signature — the point is registry/cache churn, not fine-grained
// selectivity) whose body returns the label, then remembers the handle.
func (s *Server) handleAddRule(c echo.Context) error {
	label := c.Param("label")
	intType := reflect.TypeOf(0)
	h := s.fn.When(gf.Sig(intType), gf.Plain(func(args ...any) (any, error) {
		return label, nil
	}))
	s.mu.Lock()
	s.handles[label] = h
	s.mu.Unlock()
	return c.NoContent(http.StatusCreated)
}

func (s *Server) handleRemoveRule(c echo.Context) error {
	label := c.Param("label")
	s.mu.Lock()
	h, ok := s.handles[label]
	if ok {
		delete(s.handles, label)
	}
	s.mu.Unlock()
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	s.fn.Remove(h)
	return c.NoContent(http.StatusNoContent)
}

// NewTestServer starts s's echo handler on an in-process httptest server,
// avoiding a real TCP listener for the stress test.
func NewTestServer(s *Server) *httptest.Server {
	return httptest.NewServer(s.Echo)
}
