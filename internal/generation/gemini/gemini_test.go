package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("DOCCHAT_TEST_GEMINI_KEY", "test-key")
	c, err := NewClient(context.Background(), Config{APIKeyEnv: "DOCCHAT_TEST_GEMINI_KEY", Model: "test-model", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestGenerate(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent"), r.URL.Path)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt := ""
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			prompt = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": " answer: " + prompt + " "}},
				}},
			},
		})
	}))

	require.Equal(t, "gemini/test-model", c.Name())
	out, err := c.Generate(context.Background(), "why?")
	require.NoError(t, err)
	require.Equal(t, "answer: why?", out)
}

func TestGenerateServerError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"overloaded","status":"INTERNAL"}}`))
	}))
	_, err := c.Generate(context.Background(), "why?")
	require.ErrorContains(t, err, "gemini generate content")
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("DOCCHAT_TEST_GEMINI_KEY", "")
	_, err := NewClient(context.Background(), Config{APIKeyEnv: "DOCCHAT_TEST_GEMINI_KEY"})
	require.ErrorContains(t, err, "missing API key")
}
