package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash",
		BaseURL: server.URL,
	})
	return client, server
}

func TestClient_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the first candidate text", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))

			var req struct {
				Contents []Content `json:"contents"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 3)
			assert.Equal(t, "model", req.Contents[1].Role)
			assert.Equal(t, "how are you?", req.Contents[2].Parts[0].Text)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{
						"parts": []map[string]string{{"text": "I'm here with you."}},
					}},
				},
			})
		})
		defer server.Close()

		history := []Content{
			{Role: "user", Parts: []Part{{Text: "hi"}}},
			{Role: "model", Parts: []Part{{Text: "hello"}}},
		}
		text, err := client.Generate(ctx, "how are you?", history)

		require.NoError(t, err)
		assert.Equal(t, "I'm here with you.", text)
	})

	t.Run("non-2xx status is an error, never a panic", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		})
		defer server.Close()

		text, err := client.Generate(ctx, "hello", nil)

		require.Error(t, err)
		assert.Empty(t, text)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty candidate list is ErrNoContent", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
		})
		defer server.Close()

		_, err := client.Generate(ctx, "hello", nil)
		require.ErrorIs(t, err, ErrNoContent)
	})

	t.Run("candidate without text is ErrNoContent", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{
						"parts": []map[string]string{{"text": ""}},
					}},
				},
			})
		})
		defer server.Close()

		_, err := client.Generate(ctx, "hello", nil)
		require.ErrorIs(t, err, ErrNoContent)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		})
		defer server.Close()

		_, err := client.Generate(ctx, "hello", nil)
		require.Error(t, err)
	})

	t.Run("unreachable server is an error", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
		server.Close()

		_, err := client.Generate(ctx, "hello", nil)
		require.Error(t, err)
	})
}
