package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, models ...string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.False(t, req.Stream)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "  echo: " + req.Prompt + "\n"})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		var out tagsResponse
		for _, m := range models {
			out.Models = append(out.Models, struct {
				Name string `json:"name"`
			}{Name: m})
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	srv := newServer(t)
	c := NewClient(Config{Host: srv.URL})
	require.Equal(t, "ollama/phi", c.Name())

	out, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, "echo: hi", out)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, "llama2:latest", "phi:latest")
	require.NoError(t, NewClient(Config{Host: srv.URL, Model: "phi"}).Health(context.Background()))
	require.NoError(t, NewClient(Config{Host: srv.URL, Model: "llama2:latest"}).Health(context.Background()))

	err := NewClient(Config{Host: srv.URL, Model: "mistral"}).Health(context.Background())
	require.ErrorContains(t, err, "ollama pull mistral")
}

func TestGenerateUnreachable(t *testing.T) {
	srv := newServer(t)
	srv.Close()
	_, err := NewClient(Config{Host: srv.URL}).Generate(context.Background(), "hi")
	require.Error(t, err)
}
