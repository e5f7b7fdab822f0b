package handlers

import (
	"net/http"
	"strings"
	"time"

	"tipjar-backend/authz"
	"tipjar-backend/dtos"
	"tipjar-backend/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError writes the unified error body. Every error carries a stable
// machine-readable code alongside the human message.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

func respondDenial(c *gin.Context, d *authz.Denial) {
	respondError(c, d.Status, d.Code, d.Message)
}

func respondParamError(c *gin.Context, e *dtos.ParamError) {
	respondError(c, http.StatusBadRequest, e.Code, e.Message)
}

// mustActor fetches the actor resolved by the auth middleware. Routes are
// wired so this cannot fail on protected endpoints; the 401 is a guard
// against wiring mistakes.
func mustActor(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
		return authz.Actor{}, false
	}
	return actor, true
}

// parseIDParam parses the :id path segment, rejecting anything that is
// not a UUID before touching storage.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Valid ID is required")
		return uuid.Nil, false
	}
	return id, true
}

// parseDateFilter parses an optional RFC3339/date query parameter. ok is
// false only when the value is present and unparsable.
func parseDateFilter(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isUniqueViolation reports whether the storage error is a unique
// constraint failure, covering the Postgres and SQLite (test) drivers.
// The raw error never reaches the client; callers translate it into a
// domain conflict code.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// optString trims a request string and returns nil for empty input, for
// nullable columns.
func optString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
