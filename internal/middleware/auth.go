package middleware

import (
	"github.com/gin-gonic/gin"

	"pethotel/internal/domain"
	"pethotel/internal/service"
)

// Headers set by the upstream auth proxy for signed-in members.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
	HeaderUserPhone = "X-User-Phone"
)

// AuthMiddleware puts the member named by the proxy headers into the request
// context. Requests without them continue as guests.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.Next()
			return
		}

		user := domain.UserRef{
			ID:    userID,
			Name:  c.GetHeader(HeaderUserName),
			Email: c.GetHeader(HeaderUserEmail),
			Phone: c.GetHeader(HeaderUserPhone),
		}
		c.Request = c.Request.WithContext(service.WithUser(c.Request.Context(), user))
		c.Next()
	}
}
