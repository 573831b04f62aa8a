package http

import "github.com/gin-gonic/gin"

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// identity 从认证中间件写入的上下文取出调用者身份。
func identity(c *gin.Context) (userID, coupleID string) {
	userID = c.GetString("user_id")
	coupleID = c.GetString("couple_id")
	return
}
