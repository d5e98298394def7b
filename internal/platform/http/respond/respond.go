// Package respond writes the JSON envelope shared by every handler.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/shared/apperr"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindAuth:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with {"success": false, "message": ...}.
// Internal causes are logged and never sent to the client.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	message := "Internal Server Error"
	var ae *apperr.Error
	if errors.As(err, &ae) && kind != apperr.KindInternal {
		message = ae.Message
	}

	attrs := []any{
		"kind", kind.String(),
		"status", status,
		"path", c.FullPath(),
		"remote_addr", c.ClientIP(),
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", append(attrs, "error", err)...)
	} else {
		slog.Warn("request rejected", append(attrs, "message", message)...)
	}

	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// Message writes {"success": true, "message": msg}.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": true, "message": msg})
}
