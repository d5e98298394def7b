package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cause := errors.New("smtp: connection refused")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("Please fill full form!"), KindValidation},
		{"auth", Auth("Invalid email or password"), KindAuth},
		{"unauthenticated", Unauthenticated("User not authenticated", cause), KindUnauthenticated},
		{"not found", NotFound("User Not Found!"), KindNotFound},
		{"delivery", Delivery("mail failed", cause), KindDelivery},
		{"upstream", Upstream("upload failed", cause), KindUpstream},
		{"rate limited", RateLimited("Too many requests"), KindRateLimited},
		{"internal", Internal(cause), KindInternal},
		{"wrapped validation", fmt.Errorf("register: %w", Validation("Email Required!")), KindValidation},
		{"plain error", cause, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindOf(tt.err))
			assert.True(t, Is(tt.err, tt.want))
		})
	}
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("bucket not found")
	err := Upstream("Failed to upload avatar", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "upstream")
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestIs_NilError(t *testing.T) {
	t.Parallel()
	assert.False(t, Is(nil, KindInternal))
}
