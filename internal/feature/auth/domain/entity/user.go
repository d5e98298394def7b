// Package entity defines the domain entities for the auth feature.
package entity

import (
	"io"
	"time"
)

// StoredFile references an object held by an external object store.
type StoredFile struct {
	// PublicID is the provider-side object key, used for deletion.
	PublicID string `gorm:"size:512"`
	URL      string `gorm:"size:1024"`
	Filename string `gorm:"size:255"`
}

// IsZero reports whether no object is referenced.
func (f StoredFile) IsZero() bool {
	return f.PublicID == "" && f.URL == ""
}

// User is the single record holding both the portfolio profile and the credential.
type User struct {
	ID string `gorm:"primaryKey;size:36"`

	FullName     string   `gorm:"size:255;not null"`
	Email        string   `gorm:"uniqueIndex;size:255;not null"`
	Phone        string   `gorm:"size:64;not null"`
	Location     string   `gorm:"size:255;not null"`
	AboutMe      string   `gorm:"type:text;not null"`
	Skills       []string `gorm:"serializer:json;type:text"`
	PortfolioURL string   `gorm:"size:1024;not null"`

	GithubURL     string `gorm:"size:1024"`
	InstagramURL  string `gorm:"size:1024"`
	TwitterURL    string `gorm:"size:1024"`
	LinkedInURL   string `gorm:"size:1024"`
	FacebookURL   string `gorm:"size:1024"`
	YoutubeURL    string `gorm:"size:1024"`
	LeetcodeURL   string `gorm:"size:1024"`
	CodeforcesURL string `gorm:"size:1024"`
	CodechefURL   string `gorm:"size:1024"`

	Avatar StoredFile `gorm:"embedded;embeddedPrefix:avatar_"`
	Resume StoredFile `gorm:"embedded;embeddedPrefix:resume_"`

	// PasswordHash is a bcrypt hash. Empty on every read that does not ask for it.
	PasswordHash string `gorm:"size:255;not null"`

	// ResetTokenHash and ResetTokenExpiry are both set or both nil.
	ResetTokenHash   *string    `gorm:"size:128;index"`
	ResetTokenExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResetPending reports whether a reset token is outstanding and unexpired at now.
func (u User) ResetPending(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now)
}

// Upload is a file received from a client, ready to be handed to an object store.
type Upload struct {
	// Key is the object name inside the bucket.
	Key         string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
