package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
)

const userIDKey = "dd.userID"

// WithUserID stores the authenticated user ID on the request context.
func WithUserID(c *gin.Context, id uuid.UUID) {
	c.Set(userIDKey, id)
}

// UserIDFromCtx fetches the authenticated user ID from the request context.
func UserIDFromCtx(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
