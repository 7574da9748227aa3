package db

import (
	"fmt"
	"time"

	"Gin_postgres_redis_library_api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open wraps gorm.Open with the settings every dialect shares. References
// between collections are checked by the repo, not by FK constraints.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
}

// ConnectDB opens Postgres and runs migrations.
func ConnectDB(dsn string) (*gorm.DB, error) {
	conn, err := Open(postgres.Open(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Author{}, &models.Book{}, &models.BorrowRecord{}, &models.AuditLog{}); err != nil {
		return err
	}

	// active borrows per book: delete checks and the borrow list read this
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_active_by_book
	  ON %s (book_id, borrowed_at DESC)
	  WHERE returned_at IS NULL;
	`, models.BorrowTable, models.BorrowTable)).Error; err != nil {
		return err
	}

	return nil
}
