package repository

import (
	"context"

	"pairmap/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// FindByEmail 根据邮箱查找用户。
	// 如果用户不存在，应返回 repository.ErrUserNotFound。
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByID 根据用户 ID 查找用户。
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// Save 保存用户信息。已存在（基于 ID）则更新，否则创建。
	Save(ctx context.Context, user *domain.User) error

	// FindPartner 查找同一配对中除 selfID 之外的成员。
	// 配对中没有其他成员时返回 repository.ErrUserNotFound。
	FindPartner(ctx context.Context, coupleID, selfID string) (*domain.User, error)
}

// CoupleRepository 定义了配对数据的存储操作。
type CoupleRepository interface {
	// FindByID 根据配对 ID 查找配对。
	FindByID(ctx context.Context, id string) (*domain.Couple, error)

	// Save 保存配对信息。
	Save(ctx context.Context, couple *domain.Couple) error
}
