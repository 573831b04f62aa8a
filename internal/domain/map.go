package domain

import (
	"time"

	"gorm.io/gorm"
)

// Map 表示一张共享画布（地图）。所有实时协作都以 Map 为房间边界。
type Map struct {
	ID          string         `gorm:"type:char(36);primaryKey" json:"id"`
	CoupleID    string         `gorm:"type:char(36);index;not null" json:"coupleId"`
	Name        string         `gorm:"type:varchar(191);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
