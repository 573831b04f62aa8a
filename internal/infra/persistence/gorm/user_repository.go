package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"pairmap/internal/domain"
	"pairmap/internal/repository"
)

// GormUserRepository 是 UserRepository 接口的 GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository 创建 GormUserRepository 实例。
// db 通过依赖注入传入。
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	if db == nil {
		// 早期失败比运行时 panic 更好
		panic("database connection cannot be nil for GormUserRepository")
	}
	return &GormUserRepository{db: db}
}

// FindByEmail 实现根据邮箱查找用户
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by email '%s': %w", email, err)
	}
	return &user, nil
}

// FindByID 实现根据用户 ID 查找用户
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by id %s: %w", id, err)
	}
	return &user, nil
}

// Save 实现保存用户信息（创建或更新）
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save user (id: %s): %w", user.ID, err)
	}
	return nil
}

// FindPartner 查找同一配对中除 selfID 之外的成员
func (r *GormUserRepository) FindPartner(ctx context.Context, coupleID, selfID string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("couple_id = ? AND id != ?", coupleID, selfID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find partner in couple %s: %w", coupleID, err)
	}
	return &user, nil
}

// GormCoupleRepository 是 CoupleRepository 接口的 GORM 实现
type GormCoupleRepository struct {
	db *gorm.DB
}

// NewGormCoupleRepository 创建 GormCoupleRepository 实例
func NewGormCoupleRepository(db *gorm.DB) *GormCoupleRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCoupleRepository")
	}
	return &GormCoupleRepository{db: db}
}

func (r *GormCoupleRepository) FindByID(ctx context.Context, id string) (*domain.Couple, error) {
	var couple domain.Couple
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&couple).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCoupleNotFound
		}
		return nil, fmt.Errorf("gorm: find couple by id %s: %w", id, err)
	}
	return &couple, nil
}

func (r *GormCoupleRepository) Save(ctx context.Context, couple *domain.Couple) error {
	if err := r.db.WithContext(ctx).Save(couple).Error; err != nil {
		return fmt.Errorf("gorm: save couple (id: %s): %w", couple.ID, err)
	}
	return nil
}

// isDuplicateEntryError 检查 MySQL 的唯一约束错误 (error 1062)。
func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
