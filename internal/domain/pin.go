package domain

import (
	"time"

	"gorm.io/gorm"
)

// Pin 类型取值。
const (
	PinTypeMemory    = "memory"
	PinTypeWishlist  = "wishlist"
	PinTypeMilestone = "milestone"
	PinTypeTrip      = "trip"
)

// Pin 的默认外观。
const (
	DefaultPinIcon  = "📍"
	DefaultPinColor = "#E11D48"
)

// Pin 表示地图上的一个图钉，是持久化实体，写操作返回权威记录。
type Pin struct {
	ID          string         `gorm:"type:char(36);primaryKey" json:"id"`
	MapID       string         `gorm:"type:char(36);index;not null" json:"mapId"`
	CreatedBy   string         `gorm:"type:char(36);index;not null" json:"createdBy"`
	Title       string         `gorm:"type:varchar(191);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Lat         float64        `gorm:"not null" json:"lat"`
	Lng         float64        `gorm:"not null" json:"lng"`
	PinType     string         `gorm:"type:varchar(20);not null;default:memory" json:"pinType"`
	Icon        string         `gorm:"type:varchar(20)" json:"icon"`
	Color       string         `gorm:"type:varchar(20)" json:"color"`
	MemoryDate  *time.Time     `json:"memoryDate"`
	IsPrivate   bool           `gorm:"not null;default:false" json:"isPrivate"`
	Media       []PinMedia     `gorm:"foreignKey:PinID" json:"media"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// PinMedia 表示图钉关联的一条媒体记录。上传和缩略图生成在本系统之外完成，
// 这里只维护有序的关联列表。
type PinMedia struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	PinID         string    `gorm:"type:char(36);index;not null" json:"pinId"`
	FilePath      string    `gorm:"type:varchar(255);not null" json:"filePath"`
	ThumbnailPath *string   `gorm:"type:varchar(255)" json:"thumbnailPath"`
	SortOrder     int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
