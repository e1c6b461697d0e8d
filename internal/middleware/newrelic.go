package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributesMiddleware decorates the nrgin transaction with route
// parameters and reports handler errors collected through c.Error.
// It must run after nrgin.Middleware.
func NewRelicAttributesMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if route := c.FullPath(); route != "" {
			txn.AddAttribute("route", route)
		}
		for _, p := range c.Params {
			txn.AddAttribute("param."+p.Key, p.Value)
		}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
