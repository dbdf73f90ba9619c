package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: message}})
}

// handleError maps pipeline errors to HTTP statuses.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		fail(c, http.StatusConflict, "not_ready", "please ingest a document first")
	case errors.Is(err, domain.ErrEmptyQuery):
		fail(c, http.StatusBadRequest, "empty_query", "query must not be empty")
	case domain.IsIngestionInput(err):
		fail(c, http.StatusBadRequest, "invalid_document", err.Error())
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrDimensionMismatch):
		fail(c, http.StatusBadGateway, "embedding_failed", err.Error())
	default:
		fail(c, http.StatusInternalServerError, "internal", err.Error())
	}
}
