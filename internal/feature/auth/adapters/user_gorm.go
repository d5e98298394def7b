// Package adapters provides the gorm-backed repository for the auth feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/feature/auth/usecase"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// UserGorm implements usecase.UserRepository on gorm.
type UserGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*UserGorm)(nil)

// NewUserGorm returns a repository using db.
func NewUserGorm(db *gorm.DB) *UserGorm {
	return &UserGorm{db: db}
}

// Create inserts u. A duplicate email yields usecase.ErrEmailAlreadyExists.
func (r *UserGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *UserGorm) first(ctx context.Context, withPassword bool, query string, args ...any) (*entity.User, error) {
	q := r.db.WithContext(ctx)
	if !withPassword {
		q = q.Omit("password_hash")
	}
	var u entity.User
	if err := q.Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	if !withPassword {
		u.PasswordHash = ""
	}
	return &u, nil
}

// FindByID returns the user without the password hash.
func (r *UserGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, false, "id = ?", id)
}

// FindByIDWithPassword returns the user including the password hash.
func (r *UserGorm) FindByIDWithPassword(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, true, "id = ?", id)
}

// FindByEmail returns the user without the password hash.
func (r *UserGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, false, "email = ?", email)
}

// FindByEmailWithPassword returns the user including the password hash.
func (r *UserGorm) FindByEmailWithPassword(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, true, "email = ?", email)
}

func (r *UserGorm) update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash.
func (r *UserGorm) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": passwordHash})
}

// SetResetToken writes hash and expiry in one statement.
func (r *UserGorm) SetResetToken(ctx context.Context, id, hash string, expiry time.Time) error {
	return r.update(ctx, id, map[string]any{
		"reset_token_hash":   hash,
		"reset_token_expiry": expiry.UTC(),
	})
}

// ClearResetToken nulls hash and expiry in one statement.
func (r *UserGorm) ClearResetToken(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]any{
		"reset_token_hash":   nil,
		"reset_token_expiry": nil,
	})
}

// FindByResetToken returns the user holding hash with an expiry after now.
func (r *UserGorm) FindByResetToken(ctx context.Context, hash string, now time.Time) (*entity.User, error) {
	u, err := r.first(ctx, false, "reset_token_hash = ? AND reset_token_expiry > ?", hash, now.UTC())
	if errors.Is(err, usecase.ErrUserNotFound) {
		return nil, usecase.ErrResetTokenNotFound
	}
	return u, err
}

// ConsumeResetToken sets the new hash and clears the reset fields only while the
// stored digest still equals hash. Losing a race yields usecase.ErrResetTokenNotFound.
func (r *UserGorm) ConsumeResetToken(ctx context.Context, id, hash, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ? AND reset_token_hash = ?", id, hash).
		Updates(map[string]any{
			"password_hash":      passwordHash,
			"reset_token_hash":   nil,
			"reset_token_expiry": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrResetTokenNotFound
	}
	return nil
}

// UpdateProfile saves the profile columns of u. Credential columns are never written.
func (r *UserGorm) UpdateProfile(ctx context.Context, u *entity.User) error {
	res := r.db.WithContext(ctx).Model(u).
		Select(profileColumns).
		Updates(u)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return usecase.ErrEmailAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

var profileColumns = []string{
	"full_name", "email", "phone", "location", "about_me", "skills", "portfolio_url",
	"github_url", "instagram_url", "twitter_url", "linked_in_url", "facebook_url",
	"youtube_url", "leetcode_url", "codeforces_url", "codechef_url",
	"avatar_public_id", "avatar_url", "avatar_filename",
	"resume_public_id", "resume_url", "resume_filename",
	"updated_at",
}
