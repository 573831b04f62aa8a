// Package domain 定义了应用程序中使用的数据结构（数据库模型）。
package domain

import "time"

// User 表示应用程序中的用户。每个用户至多属于一个情侣配对。
type User struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	Email       string    `gorm:"type:varchar(191);uniqueIndex:idx_email;not null" json:"email"`
	Password    string    `gorm:"type:text;not null" json:"-"` // 存储的是 bcrypt 哈希
	DisplayName string    `gorm:"type:varchar(100);not null" json:"displayName"`
	AvatarPath  *string   `gorm:"type:varchar(255)" json:"avatarPath"`
	CoupleID    *string   `gorm:"type:char(36);index" json:"coupleId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
