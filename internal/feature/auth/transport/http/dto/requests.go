package dto

// RegisterReq is the multipart form of POST /user/register. Files are read separately,
// so field checks run in usecase.RegisterInput where the missing-files message comes first.
type RegisterReq struct {
	FullName      string `form:"fullName"`
	Email         string `form:"email"`
	Phone         string `form:"phone"`
	Location      string `form:"location"`
	AboutMe       string `form:"aboutMe"`
	Skills        string `form:"skills"`
	Password      string `form:"password"`
	PortfolioURL  string `form:"portfolioURL"`
	GithubURL     string `form:"githubURL"`
	InstagramURL  string `form:"instagramURL"`
	TwitterURL    string `form:"twitterURL"`
	LinkedInURL   string `form:"linkedInURL"`
	FacebookURL   string `form:"facebookURL"`
	YoutubeURL    string `form:"youtubeURL"`
	LeetcodeURL   string `form:"leetcodeURL"`
	CodeforcesURL string `form:"codeforcesURL"`
	CodechefURL   string `form:"codechefURL"`
}

// LoginReq is the body of POST /user/login.
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdatePasswordReq is the body of PUT /user/update/password.
type UpdatePasswordReq struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}

// ForgotPasswordReq is the body of POST /user/password/forgot.
type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordReq is the body of PUT /user/password/reset/:token.
type ResetPasswordReq struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// SessionRes is returned by endpoints that log the user in.
type SessionRes struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    *UserRes `json:"user"`
	Token   string   `json:"token"`
}
