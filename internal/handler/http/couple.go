package http

import (
	"net/http"

	"pairmap/internal/service"

	"github.com/gin-gonic/gin"
)

// CoupleHandler 封装了配对状态相关的 HTTP 处理逻辑
type CoupleHandler struct {
	coupleService *service.CoupleService
}

// NewCoupleHandler 创建 CoupleHandler 实例
func NewCoupleHandler(coupleService *service.CoupleService) *CoupleHandler {
	return &CoupleHandler{coupleService: coupleService}
}

// Me 返回当前用户所在配对的状态（配对信息、对方成员、对方是否在线）
func (h *CoupleHandler) Me(c *gin.Context) {
	userID, coupleID := identity(c)

	status, err := h.coupleService.Status(c.Request.Context(), coupleID, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, status)
}
