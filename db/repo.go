package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"Gin_postgres_redis_library_api/events"
	"Gin_postgres_redis_library_api/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	DB     *gorm.DB
	Log    zerolog.Logger
	Events events.Publisher
}

func NewRepo(db *gorm.DB, log zerolog.Logger, pub events.Publisher) *Repo {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Repo{DB: db, Log: log, Events: pub}
}

// lockRow adds SELECT ... FOR <strength> on Postgres. Other dialects (SQLite
// in tests) serialise writers on their own and reject the clause.
func lockRow(tx *gorm.DB, strength string) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: strength})
	}
	return tx
}

func exists(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Users

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	taken, err := exists(r.DB.WithContext(ctx), &models.User{}, "email = ? OR username = ?", u.Email, u.Username)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateUser
	}
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"last_login_at": time.Now().UTC(),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
		}).Error
}

func (r *Repo) UpdateUserPassword(ctx context.Context, userID, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) publish(ctx context.Context, ev events.BorrowEvent) {
	if err := r.Events.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		r.Log.Warn().Err(err).Str("type", string(ev.Type)).Str("book", ev.BookID).Msg("publish borrow event")
	}
}

func nowUTC() time.Time { return time.Now().UTC() }
