package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin protège le back-office : seul le rôle "admin" passe.
// À chaîner après AuthRequired, qui pose le rôle dans le context.
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette action nécessite un compte administrateur"})
		c.Abort()
		return
	}
	c.Next()
}
