package coreloop

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)

		json.NewEncoder(w).Encode(HealthResponse{
			Status: "healthy",
			App:    "loop-over-rows",
			Modes:  []string{"freestyle", "keyword-kombat"},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	health, err := client.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "healthy", health.Status)
	assert.Contains(t, health.Modes, "keyword-kombat")
}

func TestProcessRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/process", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ProcessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ModeFreestyle, req.Mode)
		assert.Equal(t, "Summarize", req.Prompt)
		assert.Len(t, req.Data, 2)

		json.NewEncoder(w).Encode(ProcessResponse{
			Success:        true,
			Results:        []map[string]any{{"row": "0", "summary": "ok"}},
			ProcessedCount: 2,
			TotalCount:     2,
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	resp, err := client.ProcessRows(context.Background(), &ProcessRequest{
		Mode:   ModeFreestyle,
		Prompt: "Summarize",
		Data: map[string][]any{
			"row_0": {"Acme"},
			"row_1": {"Globex"},
		},
		Headers: []string{"name"},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.ProcessedCount)
	assert.Len(t, resp.Results, 1)
}

func TestProcessRowsNilRequest(t *testing.T) {
	client := NewClient()

	_, err := client.ProcessRows(context.Background(), nil)
	assert.ErrorContains(t, err, "request is required")
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name            string
		statusCode      int
		body            string
		expectedMessage string
		retryable       bool
		clientError     bool
	}{
		{
			name:            "validation error carries detail",
			statusCode:      422,
			body:            `{"detail": "prompt is required"}`,
			expectedMessage: "prompt is required",
			clientError:     true,
		},
		{
			name:            "error field as fallback",
			statusCode:      400,
			body:            `{"error": "bad payload"}`,
			expectedMessage: "bad payload",
			clientError:     true,
		},
		{
			name:            "opaque body falls back to status",
			statusCode:      503,
			body:            "upstream timeout",
			expectedMessage: "HTTP 503",
			retryable:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))

			_, err := client.ProcessRows(context.Background(), &ProcessRequest{Mode: ModeFreestyle})
			require.Error(t, err)

			apiErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
			assert.Equal(t, tt.expectedMessage, apiErr.Message)
			assert.Equal(t, tt.retryable, apiErr.IsRetryable())
			assert.Equal(t, tt.clientError, apiErr.IsClientError())
		})
	}
}
