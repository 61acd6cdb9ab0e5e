package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware handles CORS headers and preflight requests for the
// assemble trigger endpoint. The allowed origin defaults to "*" but can be
// pinned to a single production origin via PDFASSEMBLE_CORS_ORIGIN.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("PDFASSEMBLE_CORS_ORIGIN")
	if origin == "" {
		origin = "*"
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", "*")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
