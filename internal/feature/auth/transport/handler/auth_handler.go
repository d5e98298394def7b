// Package handler provides the HTTP handlers of the auth feature.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/feature/auth/transport/http/dto"
	"portfolio_backend/internal/feature/auth/usecase"
	jwtmw "portfolio_backend/internal/platform/jwt"
	"portfolio_backend/internal/platform/http/respond"
	"portfolio_backend/internal/platform/http/upload"
	"portfolio_backend/internal/shared/apperr"
)

// AuthUsecase is the subset of the credential manager the handlers call.
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, usecase.Session, error)
	Authenticate(ctx context.Context, email, password string) (*entity.User, usecase.Session, error)
	Logout(ctx context.Context, claims jwtmw.Claims) error
	ChangePassword(ctx context.Context, userID string, in usecase.ChangePasswordInput) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ConsumePasswordReset(ctx context.Context, token string, in usecase.ResetPasswordInput) (*entity.User, usecase.Session, error)
}

// AuthHandler serves the credential and session endpoints.
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /user/register (multipart).
func (h *AuthHandler) Register(c *gin.Context) {
	// Files first: they parse the multipart body and surface an oversized upload.
	avatar, closeAvatar, err := upload.FromForm(c, "avatar")
	if err != nil {
		respond.Error(c, err)
		return
	}
	defer closeAvatar()
	resume, closeResume, err := upload.FromForm(c, "resume")
	if err != nil {
		respond.Error(c, err)
		return
	}
	defer closeResume()

	var req dto.RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, apperr.Validation(usecase.MsgFillFullForm))
		return
	}

	user, sess, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		Location:      req.Location,
		AboutMe:       req.AboutMe,
		Skills:        dto.SplitSkills(req.Skills),
		Password:      req.Password,
		PortfolioURL:  req.PortfolioURL,
		GithubURL:     req.GithubURL,
		InstagramURL:  req.InstagramURL,
		TwitterURL:    req.TwitterURL,
		LinkedInURL:   req.LinkedInURL,
		FacebookURL:   req.FacebookURL,
		YoutubeURL:    req.YoutubeURL,
		LeetcodeURL:   req.LeetcodeURL,
		CodeforcesURL: req.CodeforcesURL,
		CodechefURL:   req.CodechefURL,
		Avatar:        avatar,
		Resume:        resume,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	writeSession(c, http.StatusCreated, "Registered Successfully!", user, sess)
}

// Login handles POST /user/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperr.Validation(usecase.MsgFillFullForm))
		return
	}
	user, sess, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	writeSession(c, http.StatusOK, "User logged in successfully", user, sess)
}

// Logout handles GET /user/logout. The cookie is cleared even if revocation fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	jwtmw.ClearSessionCookie(c.Writer)
	claims, _ := jwtmw.ClaimsFrom(c)
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		respond.Error(c, err)
		return
	}
	slog.Info("user logged out", "user_id", claims.UserID, "remote_addr", c.ClientIP())
	respond.Message(c, http.StatusOK, "User logged out successfully")
}

// UpdatePassword handles PUT /user/update/password.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req dto.UpdatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperr.Validation(usecase.MsgFillAllFields))
		return
	}
	userID := c.GetString(jwtmw.ContextUserID)
	err := h.auth.ChangePassword(c.Request.Context(), userID, usecase.ChangePasswordInput{
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	slog.Info("password updated", "user_id", userID, "remote_addr", c.ClientIP())
	respond.Message(c, http.StatusOK, "Password Updated!")
}

// ForgotPassword handles POST /user/password/forgot.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperr.Validation(usecase.MsgFillFullForm))
		return
	}
	msg, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}
	slog.Info("password reset mail sent", "remote_addr", c.ClientIP())
	respond.Message(c, http.StatusCreated, msg)
}

// ResetPassword handles PUT /user/password/reset/:token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperr.Validation(usecase.MsgFillFullForm))
		return
	}
	user, sess, err := h.auth.ConsumePasswordReset(c.Request.Context(), c.Param("token"), usecase.ResetPasswordInput{
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	slog.Info("password reset", "user_id", user.ID, "remote_addr", c.ClientIP())
	writeSession(c, http.StatusOK, "Reset Password Successfully!", user, sess)
}

func writeSession(c *gin.Context, status int, msg string, user *entity.User, sess usecase.Session) {
	jwtmw.SetSessionCookie(c.Writer, sess.Token, sess.ExpiresAt)
	c.JSON(status, dto.SessionRes{
		Success: true,
		Message: msg,
		User:    dto.FromUser(user),
		Token:   sess.Token,
	})
}
