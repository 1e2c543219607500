package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siherrmann/kgraph/apperr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_EnsureModel(t *testing.T) {
	t.Run("Returns the pinned model without calling the server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("server should not be called when a model is pinned")
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL, Model: "pinned-model"}, testLogger())

		model, err := c.EnsureModel(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "pinned-model", model)
	})

	t.Run("Discovers the first model when none is pinned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data": []map[string]any{
					{"id": "discovered-model", "object": "model"},
				},
			})
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, testLogger())

		model, err := c.EnsureModel(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "discovered-model", model)
	})

	t.Run("Errors when the server advertises no models", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []map[string]any{}})
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, testLogger())

		_, err := c.EnsureModel(context.Background())

		assert.Error(t, err)
	})
}

func TestClient_Complete(t *testing.T) {
	t.Run("Returns the assistant message content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   "pinned-model",
				"choices": []map[string]any{
					{
						"index":         0,
						"finish_reason": "stop",
						"message": map[string]any{
							"role":    "assistant",
							"content": `{"entities":[]}`,
						},
					},
				},
			})
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL, Model: "pinned-model"}, testLogger())

		out, err := c.Complete(context.Background(), "extract entities", "some text")

		require.NoError(t, err)
		assert.Equal(t, `{"entities":[]}`, out)
	})

	t.Run("Maps a deadline-exceeded context to an upstream timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(50 * time.Millisecond)
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL, Model: "pinned-model"}, testLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		_, err := c.Complete(ctx, "", "some text")

		require.Error(t, err)
		assert.Equal(t, apperr.CategoryUpstreamTimeout, apperr.CategoryOf(err))
	})

	t.Run("Resets the auto-discovered model on a completion failure and re-lists on the next call", func(t *testing.T) {
		var modelCalls, completionCalls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				modelCalls++
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"object": "list",
					"data":   []map[string]any{{"id": "discovered-model", "object": "model"}},
				})
				return
			}
			completionCalls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, testLogger())

		_, err := c.Complete(context.Background(), "", "some text")
		require.Error(t, err)
		assert.Equal(t, 1, modelCalls)

		_, err = c.Complete(context.Background(), "", "some text")
		require.Error(t, err)
		assert.Equal(t, 2, modelCalls, "a reset cache must re-list models rather than reuse the failed identifier")
		assert.Equal(t, 2, completionCalls)
	})

	t.Run("Never resets a pinned model", func(t *testing.T) {
		var modelCalls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				modelCalls++
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL, Model: "pinned-model"}, testLogger())

		_, err := c.Complete(context.Background(), "", "some text")
		require.Error(t, err)

		model, err := c.EnsureModel(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "pinned-model", model)
		assert.Equal(t, 0, modelCalls)
	})
}
