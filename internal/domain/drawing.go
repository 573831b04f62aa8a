package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pairmap/internal/geo"
)

// 笔迹的默认样式（与客户端画笔默认值一致）。
const (
	DefaultStrokeColor = "#E11D48"
	DefaultStrokeWidth = 3
)

// Drawing 表示一条已提交的手绘笔迹。持久化的是地理坐标路径；
// 屏幕投影由客户端在每次平移/缩放时重新计算，从不落库。
type Drawing struct {
	ID          string         `gorm:"type:char(36);primaryKey" json:"id"`
	MapID       string         `gorm:"type:char(36);index;not null" json:"mapId"`
	CreatedBy   string         `gorm:"type:char(36);index;not null" json:"createdBy"`
	PathData    string         `gorm:"type:text;not null" json:"-"` // JSON 序列化的地理坐标点序列
	StrokeColor string         `gorm:"type:varchar(20);not null;default:#E11D48" json:"strokeColor"`
	StrokeWidth int            `gorm:"not null;default:3" json:"strokeWidth"`
	Opacity     float64        `gorm:"not null;default:1.0" json:"opacity"`
	LayerOrder  int            `gorm:"not null;default:0" json:"layerOrder"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ParsePath 将 PathData 字段（JSON 字符串）解析为地理坐标点序列。
func (d *Drawing) ParsePath() ([]geo.GeoPoint, error) {
	if d.PathData == "" || d.PathData == "null" {
		return nil, fmt.Errorf("drawing %s has empty path data", d.ID)
	}
	var path []geo.GeoPoint
	if err := json.Unmarshal([]byte(d.PathData), &path); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drawing path: %w", err)
	}
	return path, nil
}

// SetPath 将地理坐标点序列序列化为 JSON 并写入 PathData 字段。
func (d *Drawing) SetPath(path []geo.GeoPoint) error {
	bytes, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("failed to marshal drawing path: %w", err)
	}
	d.PathData = string(bytes)
	return nil
}

// MarshalJSON 在对外序列化时展开路径，客户端直接拿到点序列。
func (d Drawing) MarshalJSON() ([]byte, error) {
	path, err := d.ParsePath()
	if err != nil {
		path = []geo.GeoPoint{}
	}
	type alias Drawing
	return json.Marshal(struct {
		alias
		PathData []geo.GeoPoint `json:"pathData"`
	}{alias(d), path})
}
