package usecase

import (
	"context"
	"time"

	"portfolio_backend/internal/feature/auth/domain/entity"
	jwtmw "portfolio_backend/internal/platform/jwt"
)

// UserRepository abstracts persistence of the credential record.
// Read methods leave PasswordHash empty unless their name ends in WithPassword.
type UserRepository interface {
	// Create persists u. Returns ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, u *entity.User) error

	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByIDWithPassword(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*entity.User, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetResetToken writes hash and expiry together, replacing any earlier token.
	SetResetToken(ctx context.Context, id, hash string, expiry time.Time) error
	// ClearResetToken nulls hash and expiry together.
	ClearResetToken(ctx context.Context, id string) error
	// FindByResetToken returns the user whose hash matches and whose expiry is after now.
	FindByResetToken(ctx context.Context, hash string, now time.Time) (*entity.User, error)
	// ConsumeResetToken sets the new password hash and clears the reset fields in one
	// statement guarded by the stored hash. Returns ErrResetTokenNotFound when no row matched.
	ConsumeResetToken(ctx context.Context, id, hash, passwordHash string) error
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	GenerateToken(userID string) (string, jwtmw.Claims, error)
	Parse(token string) (jwtmw.Claims, error)
}

// RevocationStore deny-lists token IDs until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// FileStore uploads and deletes objects in one bucket.
type FileStore interface {
	Upload(ctx context.Context, f entity.Upload) (entity.StoredFile, error)
	Delete(ctx context.Context, publicID string) error
}

// Mailer delivers a plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
