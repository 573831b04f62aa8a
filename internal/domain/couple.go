package domain

import "time"

// Couple 表示一对已配对的用户。配对流程本身由外部系统完成，
// 这里只承载所有权作用域：地图、图钉、笔迹和聊天都以 couple 为边界。
type Couple struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
