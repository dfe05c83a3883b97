package controllers

import (
	"Recit/utils/apperrors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// respondError writes the error body shared by every endpoint:
// {"error": message, "reason": reason, "fields": [...]}
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	// logged by utils.ErrorHandler
	if appErr.Kind == apperrors.KindUnknown || appErr.Kind == apperrors.KindUpstreamFailure {
		c.Error(err)
	}

	body := gin.H{"error": appErr.Error()}
	if appErr.Reason != "" {
		body["reason"] = appErr.Reason
	} else {
		body["reason"] = appErr.Kind.String()
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.AbortWithStatusJSON(appErr.Code(), body)
}

func invalid(c *gin.Context, field, message string) {
	respondError(c, apperrors.Validation([]apperrors.FieldError{{Field: field, Message: message}}))
}

// pathID reads a numeric path parameter; on failure the response is
// already written.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		invalid(c, name, "must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// queryTime reads an optional RFC3339 query parameter.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		invalid(c, name, "must be an RFC3339 timestamp")
		return nil, false
	}
	return &t, true
}
