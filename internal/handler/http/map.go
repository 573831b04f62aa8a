package http

import (
	"net/http"

	"pairmap/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MapHandler 封装了地图相关的 HTTP 处理逻辑
type MapHandler struct {
	mapService *service.MapService
}

// NewMapHandler 创建 MapHandler 实例
func NewMapHandler(mapService *service.MapService) *MapHandler {
	return &MapHandler{mapService: mapService}
}

// CreateMapRequest 定义创建地图请求的结构体
type CreateMapRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// Create 处理创建地图请求
func (h *MapHandler) Create(c *gin.Context) {
	var req CreateMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	_, coupleID := identity(c)

	m, err := h.mapService.Create(c.Request.Context(), coupleID, req.Name, req.Description)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithField("map_id", m.ID).Info("Handler.CreateMap: Map created")
	SuccessResponse(c, http.StatusCreated, m)
}

// List 返回当前配对的全部地图
func (h *MapHandler) List(c *gin.Context) {
	_, coupleID := identity(c)

	maps, err := h.mapService.List(c.Request.Context(), coupleID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, maps)
}

// Get 返回单张地图
func (h *MapHandler) Get(c *gin.Context) {
	_, coupleID := identity(c)
	mapID := c.Param("mapId")

	m, err := h.mapService.Get(c.Request.Context(), mapID, coupleID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, m)
}
