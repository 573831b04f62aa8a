package http

import (
	"net/http"
	"strconv"
	"time"

	"pairmap/internal/repository"
	"pairmap/internal/service"

	"github.com/gin-gonic/gin"
)

// PinHandler 封装了图钉相关的 HTTP 处理逻辑
type PinHandler struct {
	pinService *service.PinService
}

// NewPinHandler 创建 PinHandler 实例
func NewPinHandler(pinService *service.PinService) *PinHandler {
	return &PinHandler{pinService: pinService}
}

// CreatePinRequest 定义创建图钉请求的结构体
type CreatePinRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Lat         float64    `json:"lat" binding:"min=-90,max=90"`
	Lng         float64    `json:"lng" binding:"min=-180,max=180"`
	PinType     string     `json:"pinType" binding:"omitempty,oneof=memory wishlist milestone trip"`
	Icon        string     `json:"icon" binding:"omitempty,max=20"`
	Color       string     `json:"color" binding:"omitempty,max=20"`
	MemoryDate  *time.Time `json:"memoryDate"`
	IsPrivate   bool       `json:"isPrivate"`
}

// UpdatePinRequest 定义部分更新请求，nil 字段不修改。
type UpdatePinRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	PinType     *string    `json:"pinType" binding:"omitempty,oneof=memory wishlist milestone trip"`
	Icon        *string    `json:"icon" binding:"omitempty,max=20"`
	Color       *string    `json:"color" binding:"omitempty,max=20"`
	MemoryDate  *time.Time `json:"memoryDate"`
	IsPrivate   *bool      `json:"isPrivate"`
}

// MovePinRequest 定义移动图钉请求的结构体
type MovePinRequest struct {
	Lat float64 `json:"lat" binding:"min=-90,max=90"`
	Lng float64 `json:"lng" binding:"min=-180,max=180"`
}

// Create 在地图上创建图钉。POST /api/maps/:mapId/pins
func (h *PinHandler) Create(c *gin.Context) {
	var req CreatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	userID, coupleID := identity(c)

	pin, err := h.pinService.Create(c.Request.Context(), c.Param("mapId"), coupleID, userID, service.CreatePinInput{
		Title:       req.Title,
		Description: req.Description,
		Lat:         req.Lat,
		Lng:         req.Lng,
		PinType:     req.PinType,
		Icon:        req.Icon,
		Color:       req.Color,
		MemoryDate:  req.MemoryDate,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, pin)
}

// List 列出地图内的图钉。GET /api/maps/:mapId/pins
// 可选的 minLat/maxLat/minLng/maxLng 查询参数限定视口范围。
func (h *PinHandler) List(c *gin.Context) {
	_, coupleID := identity(c)

	bounds, err := parseBounds(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bounds parameters"})
		return
	}

	pins, err := h.pinService.ListByMap(c.Request.Context(), c.Param("mapId"), coupleID, bounds)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, pins)
}

// Get 返回单个图钉。GET /api/pins/:pinId
func (h *PinHandler) Get(c *gin.Context) {
	_, coupleID := identity(c)

	pin, err := h.pinService.Get(c.Request.Context(), c.Param("pinId"), coupleID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, pin)
}

// Update 部分更新图钉。PATCH /api/pins/:pinId
func (h *PinHandler) Update(c *gin.Context) {
	var req UpdatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	_, coupleID := identity(c)

	pin, err := h.pinService.Update(c.Request.Context(), c.Param("pinId"), coupleID, service.UpdatePinInput{
		Title:       req.Title,
		Description: req.Description,
		PinType:     req.PinType,
		Icon:        req.Icon,
		Color:       req.Color,
		MemoryDate:  req.MemoryDate,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, pin)
}

// Move 更新图钉的位置。PUT /api/pins/:pinId/position
func (h *PinHandler) Move(c *gin.Context) {
	var req MovePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	_, coupleID := identity(c)

	pin, err := h.pinService.Move(c.Request.Context(), c.Param("pinId"), coupleID, req.Lat, req.Lng)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, pin)
}

// Delete 删除图钉。DELETE /api/pins/:pinId
func (h *PinHandler) Delete(c *gin.Context) {
	_, coupleID := identity(c)

	if err := h.pinService.Delete(c.Request.Context(), c.Param("pinId"), coupleID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Pin deleted"})
}

// parseBounds 解析可选的视口范围查询参数。四个参数要么都给，要么都不给。
func parseBounds(c *gin.Context) (*repository.Bounds, error) {
	raw := [4]string{c.Query("minLat"), c.Query("maxLat"), c.Query("minLng"), c.Query("maxLng")}
	if raw[0] == "" && raw[1] == "" && raw[2] == "" && raw[3] == "" {
		return nil, nil
	}

	var vals [4]float64
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &repository.Bounds{MinLat: vals[0], MaxLat: vals[1], MinLng: vals[2], MaxLng: vals[3]}, nil
}
