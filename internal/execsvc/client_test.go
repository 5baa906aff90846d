package execsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/certilearn/assess-backend/internal/config"
	"github.com/certilearn/assess-backend/internal/engine"
	"github.com/certilearn/assess-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(baseURL string) *Client {
	return New(&config.Config{
		ExecServiceURL: baseURL,
		ExecTimeout:    2 * time.Second,
	}, zerolog.Nop())
}

func codeQuestion() (model.Question, []model.TestCase) {
	cases := []model.TestCase{
		{Input: "1 2", ExpectedOutput: "3"},
		{Input: "5 5", ExpectedOutput: "10", Hidden: true},
	}
	return model.Question{Statement: "add two ints", TestCases: cases}, cases
}

func TestExecuteReturnsPerCaseResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/execute", r.URL.Path)

		var req executeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "add two ints", req.Statement)
		assert.Len(t, req.Cases, 2)

		json.NewEncoder(w).Encode(executeResponse{Results: []bool{true, false}})
	}))
	defer srv.Close()

	q, cases := codeQuestion()
	got, err := newClient(srv.URL).Execute(context.Background(), q, "func add(a, b int) int { return a + b }", cases)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, got)
}

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(executeResponse{Results: []bool{true, true}})
	}))
	defer srv.Close()

	q, cases := codeQuestion()
	got, err := newClient(srv.URL).Execute(context.Background(), q, "src", cases)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecuteExhaustedRetriesReportUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	q, cases := codeQuestion()
	_, err := newClient(srv.URL).Execute(context.Background(), q, "src", cases)
	require.ErrorIs(t, err, engine.ErrExecutionUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecuteUnreachableHost(t *testing.T) {
	q, cases := codeQuestion()
	_, err := newClient("http://127.0.0.1:1").Execute(context.Background(), q, "src", cases)
	require.ErrorIs(t, err, engine.ErrExecutionUnavailable)
}
