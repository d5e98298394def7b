// Package usecase implements the credential and session manager.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"portfolio_backend/internal/feature/auth/domain/entity"
	jwtmw "portfolio_backend/internal/platform/jwt"
	"portfolio_backend/internal/shared/apperr"
)

const (
	// maxPasswordBytes is the bcrypt input limit.
	maxPasswordBytes = 72

	// AvatarFolder prefixes avatar object keys.
	AvatarFolder = "portfolio-avatar"

	// ResetMailSubject is the subject of the password recovery mail.
	ResetMailSubject = "Personal Portfolio Dashboard Password Recovery"
)

// Session is an issued session token and the moment it stops being accepted.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Deps wires the collaborators of AuthUsecase. Revocations may be nil.
type Deps struct {
	Users       UserRepository
	Tokens      TokenIssuer
	Revocations RevocationStore
	Avatars     FileStore
	Resumes     FileStore
	Mailer      Mailer

	// DashboardURL is the origin of the dashboard that serves /password/reset/:token.
	DashboardURL string
	// ResetSecret keys the reset token digest. Empty means plain SHA-256.
	ResetSecret string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Now defaults to time.Now.
	Now func() time.Time
}

// AuthUsecase implements registration, login, sessions, password change and reset.
type AuthUsecase struct {
	users        UserRepository
	tokens       TokenIssuer
	revocations  RevocationStore
	avatars      FileStore
	resumes      FileStore
	mailer       Mailer
	dashboardURL string
	resetSecret  []byte
	cost         int
	now          func() time.Time

	// dummyHash is compared against when the email is unknown so both login paths run bcrypt.
	dummyHash []byte
}

// NewAuthUsecase creates an AuthUsecase from d.
func NewAuthUsecase(d Deps) *AuthUsecase {
	cost := d.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("portfolio-timing-equalizer"), cost)
	if err != nil {
		dummy = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
	}
	return &AuthUsecase{
		users:        d.Users,
		tokens:       d.Tokens,
		revocations:  d.Revocations,
		avatars:      d.Avatars,
		resumes:      d.Resumes,
		mailer:       d.Mailer,
		dashboardURL: strings.TrimRight(d.DashboardURL, "/"),
		resetSecret:  []byte(d.ResetSecret),
		cost:         cost,
		now:          now,
		dummyHash:    dummy,
	}
}

// RegisterInput carries the registration form. Field order decides which
// failure is reported first.
type RegisterInput struct {
	Avatar *entity.Upload `validate:"required"`
	Resume *entity.Upload `validate:"required"`

	FullName     string   `validate:"notblank"`
	Email        string   `validate:"notblank,email"`
	Phone        string   `validate:"notblank"`
	Location     string   `validate:"notblank"`
	AboutMe      string   `validate:"notblank"`
	Skills       []string `validate:"min=1"`
	Password     string   `validate:"notblank,min=8,bcryptmax"`
	PortfolioURL string   `validate:"notblank"`

	GithubURL     string
	InstagramURL  string
	TwitterURL    string
	LinkedInURL   string
	FacebookURL   string
	YoutubeURL    string
	LeetcodeURL   string
	CodeforcesURL string
	CodechefURL   string
}

// Register uploads the avatar and resume, stores the user and logs them in.
// Uploaded objects are removed again when the user cannot be stored.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, Session, error) {
	if err := ValidateInput(in); err != nil {
		return nil, Session{}, err
	}

	in.Avatar.Key = AvatarKey(in.Avatar.Filename)
	avatar, err := u.avatars.Upload(ctx, *in.Avatar)
	if err != nil {
		return nil, Session{}, apperr.Upstream(MsgAvatarUploadFailed, err)
	}

	in.Resume.Key = ResumeKey(u.now(), in.Resume.Filename)
	resume, err := u.resumes.Upload(ctx, *in.Resume)
	if err != nil {
		Discard(ctx, u.avatars, avatar)
		return nil, Session{}, apperr.Upstream(MsgResumeUploadFailed, err)
	}

	hash, err := u.hash(in.Password)
	if err != nil {
		Discard(ctx, u.avatars, avatar)
		Discard(ctx, u.resumes, resume)
		return nil, Session{}, apperr.Internal(err)
	}

	user := &entity.User{
		ID:            uuid.NewString(),
		FullName:      in.FullName,
		Email:         in.Email,
		Phone:         in.Phone,
		Location:      in.Location,
		AboutMe:       in.AboutMe,
		Skills:        in.Skills,
		PortfolioURL:  in.PortfolioURL,
		GithubURL:     in.GithubURL,
		InstagramURL:  in.InstagramURL,
		TwitterURL:    in.TwitterURL,
		LinkedInURL:   in.LinkedInURL,
		FacebookURL:   in.FacebookURL,
		YoutubeURL:    in.YoutubeURL,
		LeetcodeURL:   in.LeetcodeURL,
		CodeforcesURL: in.CodeforcesURL,
		CodechefURL:   in.CodechefURL,
		Avatar:        avatar,
		Resume:        resume,
		PasswordHash:  hash,
	}
	if err := u.users.Create(ctx, user); err != nil {
		Discard(ctx, u.avatars, avatar)
		Discard(ctx, u.resumes, resume)
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, Session{}, apperr.Validation(MsgDuplicateEmail)
		}
		return nil, Session{}, apperr.Internal(fmt.Errorf("create user: %w", err))
	}

	sess, err := u.issue(user.ID)
	if err != nil {
		return nil, Session{}, err
	}
	user.PasswordHash = ""
	return user, sess, nil
}

// AvatarKey names the avatar object for an uploaded filename.
func AvatarKey(filename string) string {
	return AvatarFolder + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// ResumeKey names the resume object for an uploaded filename.
func ResumeKey(now time.Time, filename string) string {
	return fmt.Sprintf("resume-%d%s", now.UnixMilli(), filepath.Ext(filename))
}

// Discard deletes a stored object without failing the caller.
func Discard(ctx context.Context, store FileStore, f entity.StoredFile) {
	if f.PublicID == "" {
		return
	}
	if err := store.Delete(context.WithoutCancel(ctx), f.PublicID); err != nil {
		slog.Warn("failed to delete stored object", "public_id", f.PublicID, "error", err)
	}
}

// Authenticate checks email and password and issues a session.
// Unknown emails and wrong passwords fail identically.
func (u *AuthUsecase) Authenticate(ctx context.Context, email, password string) (*entity.User, Session, error) {
	if email == "" || password == "" {
		return nil, Session{}, apperr.Validation(MsgFillFullForm)
	}

	user, err := u.users.FindByEmailWithPassword(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, Session{}, apperr.Internal(fmt.Errorf("find user: %w", err))
	}

	passwordHash := u.dummyHash
	if err == nil {
		passwordHash = []byte(user.PasswordHash)
	}
	compareErr := bcrypt.CompareHashAndPassword(passwordHash, []byte(password))
	if err != nil || compareErr != nil {
		return nil, Session{}, apperr.Auth(MsgInvalidCredentials)
	}

	sess, err := u.issue(user.ID)
	if err != nil {
		return nil, Session{}, err
	}
	user.PasswordHash = ""
	return user, sess, nil
}

// VerifySession validates token and, when a revocation store is configured,
// rejects tokens that were logged out. A failing store does not lock users out.
func (u *AuthUsecase) VerifySession(ctx context.Context, token string) (jwtmw.Claims, error) {
	if token == "" {
		return jwtmw.Claims{}, apperr.Unauthenticated(MsgNotAuthenticated, nil)
	}
	claims, err := u.tokens.Parse(token)
	if err != nil {
		return jwtmw.Claims{}, apperr.Unauthenticated(MsgSessionInvalid, err)
	}
	if u.revocations != nil {
		revoked, err := u.revocations.IsRevoked(ctx, claims.TokenID)
		switch {
		case err != nil:
			slog.Warn("revocation lookup failed; accepting token", "error", err)
		case revoked:
			return jwtmw.Claims{}, apperr.Unauthenticated(MsgSessionRevoked, nil)
		}
	}
	return claims, nil
}

// Logout deny-lists the token until its expiry when a revocation store is configured.
// Without one the token stays valid until it expires; the caller still clears the cookie.
func (u *AuthUsecase) Logout(ctx context.Context, claims jwtmw.Claims) error {
	if u.revocations == nil || claims.TokenID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(u.now())
	if ttl <= 0 {
		return nil
	}
	if err := u.revocations.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return apperr.Internal(fmt.Errorf("revoke token: %w", err))
	}
	return nil
}

// ChangePasswordInput carries the change-password form.
type ChangePasswordInput struct {
	CurrentPassword    string `validate:"required"`
	NewPassword        string `validate:"required"`
	ConfirmNewPassword string `validate:"required"`
}

// ChangePassword replaces the password after checking the current one.
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := ValidateInput(in); err != nil {
		return err
	}

	user, err := u.users.FindByIDWithPassword(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperr.NotFound(MsgUserNotFound)
		}
		return apperr.Internal(fmt.Errorf("find user: %w", err))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return apperr.Auth(MsgIncorrectCurrent)
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return apperr.Validation(MsgNewPasswordMismatch)
	}
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}

	hash, err := u.hash(in.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := u.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperr.Internal(fmt.Errorf("update password: %w", err))
	}
	return nil
}

// RequestPasswordReset stores a fresh reset token digest and mails the plaintext link.
// A failed delivery clears the token again before the error is returned.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if validate.Var(email, "notblank") != nil {
		return "", apperr.Validation(MsgFillFullForm)
	}
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", apperr.NotFound(MsgUserNotFound)
		}
		return "", apperr.Internal(fmt.Errorf("find user: %w", err))
	}

	token, err := newResetToken()
	if err != nil {
		return "", apperr.Internal(err)
	}
	expiry := u.now().Add(ResetTokenTTL)
	if err := u.users.SetResetToken(ctx, user.ID, digestResetToken(u.resetSecret, token), expiry); err != nil {
		return "", apperr.Internal(fmt.Errorf("store reset token: %w", err))
	}

	if err := u.mailer.Send(ctx, user.Email, ResetMailSubject, u.resetMailBody(token)); err != nil {
		if clearErr := u.users.ClearResetToken(context.WithoutCancel(ctx), user.ID); clearErr != nil {
			slog.Error("failed to roll back reset token", "user_id", user.ID, "error", clearErr)
		}
		return "", apperr.Delivery(MsgMailFailed, err)
	}

	return fmt.Sprintf("Email sent to %s successfully", user.Email), nil
}

// ResetURL is the dashboard link embedding the plaintext token.
func (u *AuthUsecase) ResetURL(token string) string {
	return u.dashboardURL + "/password/reset/" + token
}

func (u *AuthUsecase) resetMailBody(token string) string {
	return "Your Reset Password Token is:- \n\n " + u.ResetURL(token) +
		"  \n\n If You've not requested this email then, please ignore it."
}

// ResetPasswordInput carries the reset form.
type ResetPasswordInput struct {
	Password        string `validate:"eqfield=ConfirmPassword,min=8,bcryptmax"`
	ConfirmPassword string
}

// ConsumePasswordReset sets a new password using an emailed token and logs the user in.
// The token is single use: the final update is guarded by the stored digest.
func (u *AuthUsecase) ConsumePasswordReset(ctx context.Context, token string, in ResetPasswordInput) (*entity.User, Session, error) {
	digest := digestResetToken(u.resetSecret, token)
	user, err := u.users.FindByResetToken(ctx, digest, u.now())
	if err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return nil, Session{}, apperr.Auth(MsgResetTokenInvalid)
		}
		return nil, Session{}, apperr.Internal(fmt.Errorf("find reset token: %w", err))
	}

	if err := ValidateInput(in); err != nil {
		return nil, Session{}, err
	}

	hash, err := u.hash(in.Password)
	if err != nil {
		return nil, Session{}, apperr.Internal(err)
	}
	if err := u.users.ConsumeResetToken(ctx, user.ID, digest, hash); err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return nil, Session{}, apperr.Auth(MsgResetTokenInvalid)
		}
		return nil, Session{}, apperr.Internal(fmt.Errorf("consume reset token: %w", err))
	}

	sess, err := u.issue(user.ID)
	if err != nil {
		return nil, Session{}, err
	}
	user.PasswordHash = ""
	user.ResetTokenHash = nil
	user.ResetTokenExpiry = nil
	return user, sess, nil
}

func (u *AuthUsecase) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

func (u *AuthUsecase) issue(userID string) (Session, error) {
	token, claims, err := u.tokens.GenerateToken(userID)
	if err != nil {
		return Session{}, apperr.Internal(fmt.Errorf("failed to generate token: %w", err))
	}
	return Session{Token: token, ExpiresAt: claims.ExpiresAt}, nil
}
