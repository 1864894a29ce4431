package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequirePasswordChangeCompletedMiddleware 阻止未完成首次改密的账号访问业务接口。
// 只读 access token 里的 must_change_password 声明，不额外查库。
func RequirePasswordChangeCompletedMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if mustChange, ok := c.Get("mustChangePassword"); ok {
			if flag, ok := mustChange.(bool); ok && flag {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "password change required"})
				return
			}
		}
		c.Next()
	}
}
