package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"

	"pethotel/internal/service"
)

// BookingAttributesMiddleware tags the New Relic transaction started by nrgin
// with booking attributes. It must run after nrgin.Middleware.
func BookingAttributesMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if user, ok := service.UserFromContext(c.Request.Context()); ok {
			txn.AddAttribute("user.id", user.ID)
		} else {
			txn.AddAttribute("user.guest", true)
		}
		if id := c.Param("id"); id != "" {
			txn.AddAttribute("resource.id", id)
		}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
		if status := c.Writer.Status(); status >= 400 {
			txn.AddAttribute("booking.rejected", true)
		}
	}
}
