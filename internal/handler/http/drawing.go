package http

import (
	"net/http"

	"pairmap/internal/geo"
	"pairmap/internal/service"

	"github.com/gin-gonic/gin"
)

// DrawingHandler 封装了笔迹相关的 HTTP 处理逻辑
type DrawingHandler struct {
	drawingService *service.DrawingService
}

// NewDrawingHandler 创建 DrawingHandler 实例
func NewDrawingHandler(drawingService *service.DrawingService) *DrawingHandler {
	return &DrawingHandler{drawingService: drawingService}
}

// CreateDrawingRequest 定义保存笔迹请求的结构体
type CreateDrawingRequest struct {
	Path    []geo.GeoPoint `json:"path" binding:"required,min=2"`
	Color   string         `json:"color" binding:"omitempty,max=20"`
	Width   int            `json:"width" binding:"omitempty,min=1,max=50"`
	Opacity float64        `json:"opacity" binding:"omitempty,min=0,max=1"`
}

// Create 保存一条笔迹。POST /api/maps/:mapId/drawings
func (h *DrawingHandler) Create(c *gin.Context) {
	var req CreateDrawingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	userID, coupleID := identity(c)

	drawing, err := h.drawingService.Create(c.Request.Context(), c.Param("mapId"), coupleID, userID,
		req.Path, req.Color, req.Width, req.Opacity)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, drawing)
}

// List 列出地图内的全部笔迹。GET /api/maps/:mapId/drawings
func (h *DrawingHandler) List(c *gin.Context) {
	_, coupleID := identity(c)

	drawings, err := h.drawingService.ListByMap(c.Request.Context(), c.Param("mapId"), coupleID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, drawings)
}

// Delete 删除单条笔迹。DELETE /api/drawings/:drawingId
func (h *DrawingHandler) Delete(c *gin.Context) {
	_, coupleID := identity(c)

	if err := h.drawingService.Delete(c.Request.Context(), c.Param("drawingId"), coupleID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Drawing deleted"})
}

// Clear 清空地图内的全部笔迹，返回清除数量。DELETE /api/maps/:mapId/drawings
func (h *DrawingHandler) Clear(c *gin.Context) {
	_, coupleID := identity(c)

	cleared, err := h.drawingService.Clear(c.Request.Context(), c.Param("mapId"), coupleID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"cleared": cleared})
}
