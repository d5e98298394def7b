package usecase

import "errors"

// Repository sentinels. Adapters return these; the usecase maps them to apperr values.
var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrResetTokenNotFound is returned when no unexpired reset token matches a digest,
	// or when a guarded consume updated no row.
	ErrResetTokenNotFound = errors.New("reset token not found")
)

// Client-facing messages.
const (
	MsgFilesRequired         = "Avatar and Resume are Required!"
	MsgFillFullForm          = "Please fill full form!"
	MsgInvalidCredentials    = "Invalid email or password"
	MsgNotAuthenticated      = "User not Authenticated!"
	MsgSessionInvalid        = "Session is invalid or has expired."
	MsgSessionRevoked        = "Session has been logged out."
	MsgFillAllFields         = "Please Fill All Fields."
	MsgIncorrectCurrent      = "Incorrect Current Password!"
	MsgNewPasswordMismatch   = "New Password And Confirm New Password Do Not Match!"
	MsgUserNotFound          = "User Not Found!"
	MsgResetTokenInvalid     = "Reset password token is invalid or has been expired."
	MsgResetPasswordMismatch = "Password & Confirm Password do not match"
	MsgPasswordTooShort      = "Password Must Contain At Least 8 Characters!"
	MsgPasswordTooLong       = "Password Must Not Exceed 72 Characters!"
	MsgDuplicateEmail        = "Duplicate email entered"
	MsgInvalidEmail          = "Please provide a valid email!"
	MsgAvatarUploadFailed    = "Failed to upload avatar"
	MsgResumeUploadFailed    = "Failed to upload resume"
	MsgMailFailed            = "Failed to send password recovery email"
)
