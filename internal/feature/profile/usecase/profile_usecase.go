// Package usecase implements profile reads and updates.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio_backend/internal/feature/auth/domain/entity"
	authuc "portfolio_backend/internal/feature/auth/usecase"
	"portfolio_backend/internal/shared/apperr"
)

// ProfileRepository reads and writes the profile columns of a user.
type ProfileRepository interface {
	// FindByID returns the user without credential fields, or authuc.ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// UpdateProfile saves every profile column of u.
	UpdateProfile(ctx context.Context, u *entity.User) error
}

// ProfileUsecase serves the signed-in user's profile and the public portfolio.
type ProfileUsecase struct {
	repo    ProfileRepository
	avatars authuc.FileStore
	resumes authuc.FileStore
	ownerID string
	now     func() time.Time
}

// NewProfileUsecase creates a ProfileUsecase. ownerID identifies the portfolio owner.
func NewProfileUsecase(repo ProfileRepository, avatars, resumes authuc.FileStore, ownerID string) *ProfileUsecase {
	return &ProfileUsecase{
		repo:    repo,
		avatars: avatars,
		resumes: resumes,
		ownerID: ownerID,
		now:     time.Now,
	}
}

// GetMe returns the signed-in user.
func (u *ProfileUsecase) GetMe(ctx context.Context, userID string) (*entity.User, error) {
	return u.find(ctx, userID)
}

// GetPortfolio returns the configured portfolio owner.
func (u *ProfileUsecase) GetPortfolio(ctx context.Context) (*entity.User, error) {
	if u.ownerID == "" {
		return nil, apperr.NotFound(authuc.MsgUserNotFound)
	}
	return u.find(ctx, u.ownerID)
}

func (u *ProfileUsecase) find(ctx context.Context, id string) (*entity.User, error) {
	user, err := u.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, authuc.ErrUserNotFound) {
			return nil, apperr.NotFound(authuc.MsgUserNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("find user: %w", err))
	}
	user.PasswordHash = ""
	user.ResetTokenHash = nil
	user.ResetTokenExpiry = nil
	return user, nil
}

// UpdateProfileInput holds the fields sent by the client. Nil means "leave unchanged".
type UpdateProfileInput struct {
	FullName     *string  `validate:"omitnil,notblank"`
	Email        *string  `validate:"omitnil,notblank,email"`
	Phone        *string  `validate:"omitnil,notblank"`
	Location     *string  `validate:"omitnil,notblank"`
	AboutMe      *string  `validate:"omitnil,notblank"`
	PortfolioURL *string  `validate:"omitnil,notblank"`
	Skills       []string `validate:"omitnil,min=1"`

	GithubURL     *string
	InstagramURL  *string
	TwitterURL    *string
	LinkedInURL   *string
	FacebookURL   *string
	YoutubeURL    *string
	LeetcodeURL   *string
	CodeforcesURL *string
	CodechefURL   *string

	Avatar *entity.Upload
	Resume *entity.Upload
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// UpdateProfile applies the present fields. New files are uploaded before the row is
// saved; the replaced objects are deleted only after the save succeeds.
func (u *ProfileUsecase) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	if err := authuc.ValidateInput(in); err != nil {
		return nil, err
	}
	user, err := u.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply(&user.FullName, in.FullName)
	apply(&user.Email, in.Email)
	apply(&user.Phone, in.Phone)
	apply(&user.Location, in.Location)
	apply(&user.AboutMe, in.AboutMe)
	apply(&user.PortfolioURL, in.PortfolioURL)
	apply(&user.GithubURL, in.GithubURL)
	apply(&user.InstagramURL, in.InstagramURL)
	apply(&user.TwitterURL, in.TwitterURL)
	apply(&user.LinkedInURL, in.LinkedInURL)
	apply(&user.FacebookURL, in.FacebookURL)
	apply(&user.YoutubeURL, in.YoutubeURL)
	apply(&user.LeetcodeURL, in.LeetcodeURL)
	apply(&user.CodeforcesURL, in.CodeforcesURL)
	apply(&user.CodechefURL, in.CodechefURL)
	if in.Skills != nil {
		user.Skills = in.Skills
	}

	oldAvatar, oldResume := user.Avatar, user.Resume
	var newAvatar, newResume entity.StoredFile

	if in.Avatar != nil {
		in.Avatar.Key = authuc.AvatarKey(in.Avatar.Filename)
		newAvatar, err = u.avatars.Upload(ctx, *in.Avatar)
		if err != nil {
			return nil, apperr.Upstream(authuc.MsgAvatarUploadFailed, err)
		}
		user.Avatar = newAvatar
	}
	if in.Resume != nil {
		in.Resume.Key = authuc.ResumeKey(u.now(), in.Resume.Filename)
		newResume, err = u.resumes.Upload(ctx, *in.Resume)
		if err != nil {
			authuc.Discard(ctx, u.avatars, newAvatar)
			return nil, apperr.Upstream(authuc.MsgResumeUploadFailed, err)
		}
		user.Resume = newResume
	}

	if err := u.repo.UpdateProfile(ctx, user); err != nil {
		authuc.Discard(ctx, u.avatars, newAvatar)
		authuc.Discard(ctx, u.resumes, newResume)
		switch {
		case errors.Is(err, authuc.ErrEmailAlreadyExists):
			return nil, apperr.Validation(authuc.MsgDuplicateEmail)
		case errors.Is(err, authuc.ErrUserNotFound):
			return nil, apperr.NotFound(authuc.MsgUserNotFound)
		}
		return nil, apperr.Internal(fmt.Errorf("update profile: %w", err))
	}

	if in.Avatar != nil {
		authuc.Discard(ctx, u.avatars, oldAvatar)
	}
	if in.Resume != nil {
		authuc.Discard(ctx, u.resumes, oldResume)
	}
	return user, nil
}
