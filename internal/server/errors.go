package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
)

// respondError maps the error taxonomy to a status code.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	case apperrors.IsConflict(err):
		status = http.StatusConflict
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	}

	body := gin.H{"error": err.Error()}
	if ve, ok := err.(*apperrors.ValidationError); ok && ve.Field != "" {
		body["field"] = ve.Field
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		body["error"] = "internal error"
	}
	c.JSON(status, body)
}

// bindJSON decodes the request body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}
