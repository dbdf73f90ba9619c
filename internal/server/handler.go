package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/extract"
	"docchat/internal/service"
)

type handler struct {
	chat        *service.Chat
	defaultTopK int
	maxUpload   int64
	logger      *zap.Logger
}

type uploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Summary  string `json:"summary"`
	Status   string `json:"status"`
}

type chatRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k"`
}

type source struct {
	Rank    int     `json:"rank"`
	Score   float32 `json:"score"`
	ChunkID int     `json:"chunk_id"`
	Text    string  `json:"text"`
}

type chatResponse struct {
	Response    string   `json:"response"`
	ContextUsed int      `json:"context_used"`
	Degraded    bool     `json:"degraded"`
	Sources     []source `json:"sources"`
}

type statusResponse struct {
	PDFLoaded          bool    `json:"pdf_loaded"`
	CurrentDocument    *string `json:"current_document"`
	ChunksCount        int     `json:"chunks_count"`
	Dimension          int     `json:"dimension"`
	GeneratorConnected bool    `json:"generator_connected"`
}

type turn struct {
	Query       string    `json:"query"`
	Response    string    `json:"response"`
	ContextUsed int       `json:"context_used"`
	At          time.Time `json:"at"`
}

func (h *handler) root(c *gin.Context) {
	success(c, gin.H{"message": "docchat API is running"})
}

func (h *handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, "too_large", fmt.Sprintf("file exceeds %dMB", h.maxUpload>>20))
			return
		}
		fail(c, http.StatusBadRequest, "invalid_file", "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_file", "failed to open file")
		return
	}
	defer opened.Close()
	raw, err := io.ReadAll(opened)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_file", "failed to read file")
		return
	}

	text, err := extract.Text(file.Filename, raw)
	if err != nil {
		h.logger.Warn("extraction failed", zap.String("filename", file.Filename), zap.Error(err))
		handleError(c, err)
		return
	}
	res, err := h.chat.Retriever().Ingest(c.Request.Context(), domain.Document{Name: file.Filename, Text: text})
	if err != nil {
		h.logger.Error("ingest failed", zap.String("filename", file.Filename), zap.Error(err))
		handleError(c, err)
		return
	}
	success(c, uploadResponse{
		Message:  "Document processed successfully",
		Filename: res.Document,
		Chunks:   res.ChunkCount,
		Summary:  res.Summary,
		Status:   "ready",
	})
}

func (h *handler) ask(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	k := h.defaultTopK
	if req.TopK != nil {
		k = *req.TopK
	}
	ans, err := h.chat.Ask(c.Request.Context(), req.Query, k)
	if err != nil {
		handleError(c, err)
		return
	}
	sources := make([]source, len(ans.Sources))
	for i, sr := range ans.Sources {
		sources[i] = source{Rank: sr.Rank, Score: sr.Score, ChunkID: sr.Chunk.ID, Text: sr.Chunk.Text}
	}
	success(c, chatResponse{
		Response:    ans.Text,
		ContextUsed: len(ans.Sources),
		Degraded:    ans.Degraded,
		Sources:     sources,
	})
}

func (h *handler) status(c *gin.Context) {
	st := h.chat.Status(c.Request.Context())
	resp := statusResponse{
		PDFLoaded:          st.Ready,
		ChunksCount:        st.ChunkCount,
		Dimension:          st.Dimension,
		GeneratorConnected: st.GeneratorConnected,
	}
	if st.Document != "" {
		resp.CurrentDocument = &st.Document
	}
	success(c, resp)
}

func (h *handler) history(c *gin.Context) {
	turns := h.chat.History()
	out := make([]turn, len(turns))
	for i, t := range turns {
		out[i] = turn{Query: t.Query, Response: t.Response, ContextUsed: t.ContextUsed, At: t.At}
	}
	success(c, out)
}

func (h *handler) clear(c *gin.Context) {
	h.chat.Reset()
	success(c, gin.H{"message": "Cleared successfully"})
}
