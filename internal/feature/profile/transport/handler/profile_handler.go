// Package handler provides the HTTP handlers of the profile feature.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/feature/auth/transport/http/dto"
	"portfolio_backend/internal/feature/profile/usecase"
	jwtmw "portfolio_backend/internal/platform/jwt"
	"portfolio_backend/internal/platform/http/respond"
	"portfolio_backend/internal/platform/http/upload"
)

// ProfileUsecase is the subset of the profile usecase the handlers call.
type ProfileUsecase interface {
	GetMe(ctx context.Context, userID string) (*entity.User, error)
	GetPortfolio(ctx context.Context) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, in usecase.UpdateProfileInput) (*entity.User, error)
}

// ProfileHandler serves the profile endpoints.
type ProfileHandler struct {
	profiles ProfileUsecase
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetMe handles GET /user/me.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	user, err := h.profiles.GetMe(c.Request.Context(), c.GetString(jwtmw.ContextUserID))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": dto.FromUser(user)})
}

// GetPortfolio handles GET /user/me/portfolio.
func (h *ProfileHandler) GetPortfolio(c *gin.Context) {
	user, err := h.profiles.GetPortfolio(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": dto.FromUser(user)})
}

// UpdateProfile handles PUT /user/update/me (multipart or urlencoded).
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var closers []func()
	defer func() {
		for _, fn := range closers {
			fn()
		}
	}()
	files := map[string]*entity.Upload{}
	for _, field := range []string{"avatar", "resume"} {
		up, closeFn, err := upload.FromForm(c, field)
		if err != nil {
			respond.Error(c, err)
			return
		}
		closers = append(closers, closeFn)
		files[field] = up
	}

	in := usecase.UpdateProfileInput{
		FullName:      formValue(c, "fullName"),
		Email:         formValue(c, "email"),
		Phone:         formValue(c, "phone"),
		Location:      formValue(c, "location"),
		AboutMe:       formValue(c, "aboutMe"),
		PortfolioURL:  formValue(c, "portfolioURL"),
		GithubURL:     formValue(c, "githubURL"),
		InstagramURL:  formValue(c, "instagramURL"),
		TwitterURL:    formValue(c, "twitterURL"),
		LinkedInURL:   formValue(c, "linkedInURL"),
		FacebookURL:   formValue(c, "facebookURL"),
		YoutubeURL:    formValue(c, "youtubeURL"),
		LeetcodeURL:   formValue(c, "leetcodeURL"),
		CodeforcesURL: formValue(c, "codeforcesURL"),
		CodechefURL:   formValue(c, "codechefURL"),
		Avatar:        files["avatar"],
		Resume:        files["resume"],
	}
	if skills := formValue(c, "skills"); skills != nil {
		in.Skills = dto.SplitSkills(*skills)
		if in.Skills == nil {
			in.Skills = []string{}
		}
	}

	userID := c.GetString(jwtmw.ContextUserID)
	user, err := h.profiles.UpdateProfile(c.Request.Context(), userID, in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	slog.Info("profile updated", "user_id", userID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile Updated!", "user": dto.FromUser(user)})
}

// formValue returns a pointer to the posted value, or nil when the key was not sent.
func formValue(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}

