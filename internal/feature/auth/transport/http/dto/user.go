// Package dto defines the request and response bodies of the user endpoints.
package dto

import (
	"strings"

	"portfolio_backend/internal/feature/auth/domain/entity"
)

// FileRes is a stored object reference.
type FileRes struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// UserRes is the public representation of a user. It never carries credentials.
type UserRes struct {
	ID            string   `json:"_id"`
	FullName      string   `json:"fullName"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Location      string   `json:"location"`
	AboutMe       string   `json:"aboutMe"`
	Skills        []string `json:"skills"`
	PortfolioURL  string   `json:"portfolioURL"`
	GithubURL     string   `json:"githubURL,omitempty"`
	InstagramURL  string   `json:"instagramURL,omitempty"`
	TwitterURL    string   `json:"twitterURL,omitempty"`
	LinkedInURL   string   `json:"linkedInURL,omitempty"`
	FacebookURL   string   `json:"facebookURL,omitempty"`
	YoutubeURL    string   `json:"youtubeURL,omitempty"`
	LeetcodeURL   string   `json:"leetcodeURL,omitempty"`
	CodeforcesURL string   `json:"codeforcesURL,omitempty"`
	CodechefURL   string   `json:"codechefURL,omitempty"`
	Avatar        FileRes  `json:"avatar"`
	Resume        *FileRes `json:"resume,omitempty"`
}

// FromUser converts u for a response body.
func FromUser(u *entity.User) *UserRes {
	if u == nil {
		return nil
	}
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	res := &UserRes{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.Phone,
		Location:      u.Location,
		AboutMe:       u.AboutMe,
		Skills:        skills,
		PortfolioURL:  u.PortfolioURL,
		GithubURL:     u.GithubURL,
		InstagramURL:  u.InstagramURL,
		TwitterURL:    u.TwitterURL,
		LinkedInURL:   u.LinkedInURL,
		FacebookURL:   u.FacebookURL,
		YoutubeURL:    u.YoutubeURL,
		LeetcodeURL:   u.LeetcodeURL,
		CodeforcesURL: u.CodeforcesURL,
		CodechefURL:   u.CodechefURL,
		Avatar:        FileRes{PublicID: u.Avatar.PublicID, URL: u.Avatar.URL},
	}
	if !u.Resume.IsZero() {
		res.Resume = &FileRes{PublicID: u.Resume.PublicID, URL: u.Resume.URL, Filename: u.Resume.Filename}
	}
	return res
}

// SplitSkills parses a comma separated skill list, dropping blanks.
func SplitSkills(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
