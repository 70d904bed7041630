package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/rentbook/api/internal/errors"
	"github.com/rentbook/api/internal/middleware"
)

// dateLayout is the wire format for date-only fields.
const dateLayout = "2006-01-02"

// parseIDParam parses a uuid path parameter. On failure it writes a 400
// response and returns false; callers must return immediately.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter, expected a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseDateField parses a required yyyy-mm-dd field. On failure it writes a
// 400 response naming the field and returns false.
func parseDateField(c *gin.Context, field, value string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+field+", expected yyyy-mm-dd", nil)
		return time.Time{}, false
	}
	return t, true
}

// actingUser returns the authenticated user's id. On failure it writes a 500
// response (the auth middleware should have rejected the request already).
func actingUser(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		apierrors.InternalServerError(c, "Authenticated user id is not a UUID", err)
		return uuid.Nil, false
	}
	return id, true
}
