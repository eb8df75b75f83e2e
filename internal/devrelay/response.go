package devrelay

import (
	"github.com/gin-gonic/gin"
)

// errorBody is returned for every failed request.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ok writes the {"message": ..., "data": ...} body used by message endpoints.
func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

// fail aborts the request with an error body.
func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Message: message, Error: code})
}
