package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"portfolio_backend/internal/shared/apperr"
)

// passwordRules are the length bounds of a new password.
const passwordRules = "min=8,bcryptmax"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// requiredMessages is keyed by struct field name.
var requiredMessages = map[string]string{
	"Avatar":             MsgFilesRequired,
	"Resume":             MsgFilesRequired,
	"FullName":           "Name Required!",
	"Email":              "Email Required!",
	"Phone":              "Phone Required!",
	"Location":           "Location Required!",
	"AboutMe":            "About Me Section Is Required!",
	"Skills":             "Skills Required!",
	"Password":           "Password Required!",
	"PortfolioURL":       "Portfolio URL Required!",
	"CurrentPassword":    MsgFillAllFields,
	"NewPassword":        MsgFillAllFields,
	"ConfirmNewPassword": MsgFillAllFields,
}

// ValidateInput checks in against its validate tags. The first failing field is
// reported as a Validation error carrying that field's client message.
func ValidateInput(in any) error {
	return validationError(validate.Struct(in))
}

func validatePassword(password string) error {
	return validationError(validate.Var(password, passwordRules))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Internal(fmt.Errorf("validate input: %w", err))
	}
	return apperr.Validation(fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return MsgInvalidEmail
	case "bcryptmax":
		return MsgPasswordTooLong
	case "eqfield":
		if fe.Field() == "NewPassword" {
			return MsgNewPasswordMismatch
		}
		return MsgResetPasswordMismatch
	case "min":
		if fe.Kind() == reflect.String {
			return MsgPasswordTooShort
		}
	}
	if msg, ok := requiredMessages[fe.Field()]; ok {
		return msg
	}
	return MsgFillFullForm
}
