package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a success payload as-is. Success bodies are
// shaped by the handler; no envelope is added.
func JSONResponse(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// JSONError sends the API's error shape: {"error": "..."}. The message
// must be precise enough to drive a corrective retry.
func JSONError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
