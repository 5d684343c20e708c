package server

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLog logs method, path, status, response size and duration of every
// request.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf(
			"method=%s path=%s status=%d bytes=%d dur=%dms",
			c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), c.Writer.Size(),
			time.Since(start).Milliseconds(),
		)
	}
}
