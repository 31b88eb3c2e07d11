// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestClient_Chat(t *testing.T) {
	var got ChatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(ChatResponse{
			Model:   "llama3.2",
			Message: NewAssistantMessage("Hi!"),
			Done:    true,
		})
	})

	resp, err := client.Chat(context.Background(), "llama3.2", []Message{
		NewSystemMessage("be brief"),
		NewUserMessage("Hello"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi!", resp.Message.Content)
	assert.True(t, resp.Done)
	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestClient_Chat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{"model not found", http.StatusNotFound, `{"error":"model 'x' not found"}`, ErrModelNotFound},
		{"bad request", http.StatusBadRequest, `{"error":"invalid messages"}`, ErrRejected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := client.Chat(context.Background(), "x", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.is), "got %v", err)

			var ce *ClientError
			require.True(t, errors.As(err, &ce))
		})
	}
}

func TestClient_Chat_ServerErrorUsesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"out of memory"}`))
	})

	_, err := client.Chat(context.Background(), "llama3.2", nil)
	require.Error(t, err)
	assert.Equal(t, "out of memory", err.Error())
}

func TestClient_Chat_NoModel(t *testing.T) {
	client := NewClient()
	_, err := client.Chat(context.Background(), "", nil)
	assert.True(t, IsModelNotFound(err))
}

func TestClient_Chat_Canceled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Chat(ctx, "llama3.2", nil)
	assert.True(t, IsCanceled(err), "got %v", err)
}

func TestClient_Chat_Deadline(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, "llama3.2", nil)
	assert.True(t, IsTimeout(err), "got %v", err)
}

func TestClient_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: url})
	err := client.CheckRunning(context.Background())
	assert.True(t, IsNotRunning(err), "got %v", err)
}

// =============================================================================
// HEALTH AND MODEL TESTS
// =============================================================================

func TestClient_CheckRunning(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	})
	assert.NoError(t, client.CheckRunning(context.Background()))
}

func TestClient_ListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(ListModelsResponse{Models: []ModelInfo{
			{Name: "llama3.2:latest", Size: 2 * 1024 * 1024 * 1024},
			{Name: "gemma3:4b"},
		}})
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "2.0 GB", models[0].FormatSize())
}

func TestFindModel(t *testing.T) {
	installed := []ModelInfo{{Name: "llama3.2:latest", Size: 42}, {Name: "qwen2.5:14b"}}
	tests := []struct {
		tag      string
		wantName string
		wantOK   bool
	}{
		{"llama3.2", "llama3.2:latest", true},
		{"llama3.2:latest", "llama3.2:latest", true},
		{"qwen2.5", "qwen2.5:14b", true},
		{"qwen2.5:7b", "", false},
		{"gemma3", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			m, ok := FindModel(installed, tt.tag)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, m.Name)
		})
	}

	m, _ := FindModel(installed, "llama3.2")
	assert.Equal(t, int64(42), m.Size)
}

// =============================================================================
// TYPE TESTS
// =============================================================================

func TestChatResponse_TokensPerSecond(t *testing.T) {
	tests := []struct {
		name         string
		evalCount    int
		evalDuration int64
		want         float64
	}{
		{"normal", 100, int64(time.Second), 100.0},
		{"zero duration", 100, 0, 0.0},
		{"fast", 1000, int64(100 * time.Millisecond), 10000.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &ChatResponse{EvalCount: tc.evalCount, EvalDuration: tc.evalDuration}
			assert.InDelta(t, tc.want, resp.TokensPerSecond(), tc.want*0.01)
		})
	}
}

func TestModelInfo_FormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tc := range tests {
		m := ModelInfo{Size: tc.size}
		assert.Equal(t, tc.want, m.FormatSize())
	}
}

func TestClientError_Is(t *testing.T) {
	wrapped := &ClientError{Type: ErrTypeTimeout, Message: "slow", Cause: context.DeadlineExceeded}
	assert.True(t, errors.Is(wrapped, ErrTimeout))
	assert.False(t, errors.Is(wrapped, ErrNotRunning))
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))

	unknown := &ClientError{Message: "?"}
	assert.False(t, errors.Is(unknown, &ClientError{}))
}
