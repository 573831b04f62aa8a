package setup

import (
	"fmt"

	"pairmap/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MigrateDB 迁移全部表结构。
// 所有模型的主键都是 char(36) UUID，索引列都限定了长度，
// AutoMigrate 足够，不需要手写 SQL。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	err := db.AutoMigrate(
		&domain.User{},
		&domain.Couple{},
		&domain.Map{},
		&domain.Pin{},
		&domain.PinMedia{},
		&domain.Drawing{},
		&domain.ChatMessage{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
