package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/embedding/hashing"
	"docchat/internal/generation"
	"docchat/internal/service"
	"docchat/internal/summarizer"
	"docchat/internal/vectorstore/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const manual = "The pump must be primed before first use. " +
	"Fill the housing with water and close the valve. " +
	"Replace the filter every six months to keep the flow steady. " +
	"Store the unit indoors during freezing weather."

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorBody      `json:"error"`
}

type brokenEmbedder struct{}

func (brokenEmbedder) Name() string   { return "broken" }
func (brokenEmbedder) Dimension() int { return 32 }
func (brokenEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("connection refused")
}

func newTestServer(t *testing.T, emb domain.Embedder) http.Handler {
	t.Helper()
	ch, err := chunker.NewWordChunker(8, 2)
	require.NoError(t, err)
	retriever := service.NewRetriever(ch, emb, memory.NewIndex(32), summarizer.NewFrequencySummarizer(), service.RetrieverOptions{
		EmbedTimeout:        time.Second,
		SummaryMaxSentences: 1,
	})
	chat := service.NewChat(retriever, generation.NewExtractive(), service.ChatOptions{GenerateTimeout: time.Second})
	return New(chat, config.ServerConfig{Addr: ":0", MaxUploadMB: 1}, 2, nil).Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func uploadRequest(t *testing.T, name string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func chatRequestFor(query string, topK *int) *http.Request {
	payload, _ := json.Marshal(chatRequest{Query: query, TopK: topK})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, hashing.NewEmbedder(32))
	code, env := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"message":"docchat API is running"}`, string(env.Data))
}

func TestChatBeforeUpload(t *testing.T) {
	h := newTestServer(t, hashing.NewEmbedder(32))
	code, env := do(t, h, chatRequestFor("how do I prime the pump?", nil))
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "not_ready", env.Error.Code)
	require.Equal(t, "please ingest a document first", env.Error.Message)
}

func TestUploadChatStatusHistoryClear(t *testing.T) {
	h := newTestServer(t, hashing.NewEmbedder(32))

	code, env := do(t, h, uploadRequest(t, "manual.txt", []byte(manual)))
	require.Equal(t, http.StatusOK, code)
	var up uploadResponse
	require.NoError(t, json.Unmarshal(env.Data, &up))
	require.Equal(t, "manual.txt", up.Filename)
	require.Equal(t, "ready", up.Status)
	require.Equal(t, 6, up.Chunks)
	require.NotEmpty(t, up.Summary)

	code, env = do(t, h, chatRequestFor("how often should the filter be replaced?", nil))
	require.Equal(t, http.StatusOK, code)
	var ans chatResponse
	require.NoError(t, json.Unmarshal(env.Data, &ans))
	require.False(t, ans.Degraded)
	require.Equal(t, 2, ans.ContextUsed)
	require.Len(t, ans.Sources, 2)
	require.Equal(t, 1, ans.Sources[0].Rank)
	require.True(t, strings.HasPrefix(ans.Response, "From the document:"))

	one := 1
	code, env = do(t, h, chatRequestFor("freezing weather", &one))
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &ans))
	require.Len(t, ans.Sources, 1)

	code, env = do(t, h, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, code)
	var st statusResponse
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.True(t, st.PDFLoaded)
	require.NotNil(t, st.CurrentDocument)
	require.Equal(t, "manual.txt", *st.CurrentDocument)
	require.Equal(t, 6, st.ChunksCount)
	require.Equal(t, 32, st.Dimension)
	require.True(t, st.GeneratorConnected)

	code, env = do(t, h, httptest.NewRequest(http.MethodGet, "/history", nil))
	require.Equal(t, http.StatusOK, code)
	var turns []turn
	require.NoError(t, json.Unmarshal(env.Data, &turns))
	require.Len(t, turns, 2)
	require.Equal(t, "freezing weather", turns[1].Query)

	code, env = do(t, h, httptest.NewRequest(http.MethodPost, "/clear", nil))
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"message":"Cleared successfully"}`, string(env.Data))

	code, env = do(t, h, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.False(t, st.PDFLoaded)
	require.Nil(t, st.CurrentDocument)

	code, _ = do(t, h, chatRequestFor("pump", nil))
	require.Equal(t, http.StatusConflict, code)
}

func TestUploadErrors(t *testing.T) {
	h := newTestServer(t, hashing.NewEmbedder(32))

	code, env := do(t, h, uploadRequest(t, "empty.txt", []byte("   ")))
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid_document", env.Error.Code)

	code, env = do(t, h, uploadRequest(t, "broken.pdf", []byte("%PDF-1.4 garbage")))
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid_document", env.Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	code, env = do(t, h, req)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid_file", env.Error.Code)

	big := bytes.Repeat([]byte("word "), 400_000)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "big.txt", big))
	require.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
}

func TestUploadEmbeddingFailure(t *testing.T) {
	h := newTestServer(t, brokenEmbedder{})
	code, env := do(t, h, uploadRequest(t, "manual.txt", []byte(manual)))
	require.Equal(t, http.StatusBadGateway, code)
	require.Equal(t, "embedding_failed", env.Error.Code)
	require.Contains(t, env.Error.Message, "connection refused")
}

func TestChatValidation(t *testing.T) {
	h := newTestServer(t, hashing.NewEmbedder(32))
	code, _ := do(t, h, uploadRequest(t, "manual.txt", []byte(manual)))
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, h, chatRequestFor("  ", nil))
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "empty_query", env.Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	code, env = do(t, h, req)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid_request", env.Error.Code)
}
