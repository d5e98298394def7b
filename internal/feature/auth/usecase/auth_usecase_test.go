package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio_backend/internal/feature/auth/domain/entity"
	jwtmw "portfolio_backend/internal/platform/jwt"
	"portfolio_backend/internal/shared/apperr"
)

type fixture struct {
	uc          *AuthUsecase
	users       *memUserRepository
	avatars     *mockFileStore
	resumes     *mockFileStore
	mailer      *mockMailer
	revocations *mockRevocations
	clock       *atomic.Pointer[time.Time]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := &atomic.Pointer[time.Time]{}
	clock.Store(&start)
	now := func() time.Time { return *clock.Load() }

	f := &fixture{
		users:       newMemUserRepository(),
		avatars:     &mockFileStore{},
		resumes:     &mockFileStore{},
		mailer:      &mockMailer{},
		revocations: newMockRevocations(),
		clock:       clock,
	}
	f.uc = NewAuthUsecase(Deps{
		Users:        f.users,
		Tokens:       jwtmw.NewGenerator("test-secret", time.Hour).WithClock(now),
		Revocations:  f.revocations,
		Avatars:      f.avatars,
		Resumes:      f.resumes,
		Mailer:       f.mailer,
		DashboardURL: "https://dash.test/",
		ResetSecret:  "reset-secret",
		BcryptCost:   bcrypt.MinCost,
		Now:          now,
	})
	return f
}

func (f *fixture) advance(d time.Duration) {
	next := f.clock.Load().Add(d)
	f.clock.Store(&next)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		FullName:     "Ada Lovelace",
		Email:        "a@x.com",
		Phone:        "+44 1234",
		Location:     "London",
		AboutMe:      "Engineer",
		Skills:       []string{"Go", "SQL"},
		Password:     "longenough1",
		PortfolioURL: "https://ada.dev",
		GithubURL:    "https://github.com/ada",
		Avatar:       &entity.Upload{Filename: "Me.PNG", ContentType: "image/png", Body: strings.NewReader("png")},
		Resume:       &entity.Upload{Filename: "cv.pdf", ContentType: "application/pdf", Body: strings.NewReader("pdf")},
	}
}

func (f *fixture) register(t *testing.T) *entity.User {
	t.Helper()
	u, _, err := f.uc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	return u
}

func assertKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
	if msg != "" {
		var ae *apperr.Error
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, msg, ae.Message)
	}
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	user, sess, err := f.uc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Empty(t, user.PasswordHash)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, f.clock.Load().Add(time.Hour), sess.ExpiresAt)

	require.Len(t, f.avatars.uploaded, 1)
	assert.True(t, strings.HasPrefix(f.avatars.uploaded[0].Key, AvatarFolder+"/"))
	assert.True(t, strings.HasSuffix(f.avatars.uploaded[0].Key, ".png"))
	require.Len(t, f.resumes.uploaded, 1)
	assert.Equal(t, "resume-1777626000000.pdf", f.resumes.uploaded[0].Key)
	assert.Equal(t, "cv.pdf", user.Resume.Filename)

	stored := f.users.get(user.ID)
	assert.NotEqual(t, "longenough1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough1")))
	assert.Equal(t, []string{"Go", "SQL"}, stored.Skills)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		msg    string
	}{
		{"missing avatar", func(in *RegisterInput) { in.Avatar = nil }, MsgFilesRequired},
		{"missing resume", func(in *RegisterInput) { in.Resume = nil }, MsgFilesRequired},
		{"missing name", func(in *RegisterInput) { in.FullName = " " }, "Name Required!"},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "Email Required!"},
		{"missing phone", func(in *RegisterInput) { in.Phone = "" }, "Phone Required!"},
		{"missing location", func(in *RegisterInput) { in.Location = "" }, "Location Required!"},
		{"missing about", func(in *RegisterInput) { in.AboutMe = "" }, "About Me Section Is Required!"},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, "Password Required!"},
		{"missing portfolio", func(in *RegisterInput) { in.PortfolioURL = "" }, "Portfolio URL Required!"},
		{"missing skills", func(in *RegisterInput) { in.Skills = nil }, "Skills Required!"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, MsgInvalidEmail},
		{"display-name email", func(in *RegisterInput) { in.Email = "Ada <a@x.com>" }, MsgInvalidEmail},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, MsgPasswordTooShort},
		{"long password", func(in *RegisterInput) { in.Password = strings.Repeat("p", 73) }, MsgPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			in := validRegistration()
			tt.mutate(&in)
			_, _, err := f.uc.Register(context.Background(), in)

			assertKind(t, err, apperr.KindValidation, tt.msg)
			assert.Empty(t, f.avatars.uploaded, "no upload before validation passes")
			assert.Empty(t, f.resumes.uploaded)
		})
	}
}

func TestRegister_UploadFailures(t *testing.T) {
	t.Parallel()

	t.Run("avatar", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.avatars.UploadErr = errors.New("s3 down")

		_, _, err := f.uc.Register(context.Background(), validRegistration())

		assertKind(t, err, apperr.KindUpstream, MsgAvatarUploadFailed)
		assert.Empty(t, f.resumes.uploaded)
	})

	t.Run("resume removes avatar", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.resumes.UploadErr = errors.New("supabase down")

		_, _, err := f.uc.Register(context.Background(), validRegistration())

		assertKind(t, err, apperr.KindUpstream, MsgResumeUploadFailed)
		require.Len(t, f.avatars.uploaded, 1)
		assert.Equal(t, []string{f.avatars.uploaded[0].Key}, f.avatars.deleted)
	})
}

func TestRegister_DuplicateEmailCleansUp(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t)

	_, _, err := f.uc.Register(context.Background(), validRegistration())

	assertKind(t, err, apperr.KindValidation, MsgDuplicateEmail)
	assert.Len(t, f.avatars.deleted, 1)
	assert.Len(t, f.resumes.deleted, 1)
}

func TestRegister_StoreFailureIsInternal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.users.createErr = errors.New("connection reset")

	_, _, err := f.uc.Register(context.Background(), validRegistration())

	assertKind(t, err, apperr.KindInternal, "")
	assert.Len(t, f.avatars.deleted, 1)
	assert.Len(t, f.resumes.deleted, 1)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	registered := f.register(t)

	t.Run("correct password", func(t *testing.T) {
		user, sess, err := f.uc.Authenticate(context.Background(), "a@x.com", "longenough1")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.Empty(t, user.PasswordHash)

		claims, err := f.uc.VerifySession(context.Background(), sess.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
	})

	t.Run("single character variants fail", func(t *testing.T) {
		for _, variant := range []string{"longenough2", "Longenough1", "longenough", "longenough1x"} {
			_, _, err := f.uc.Authenticate(context.Background(), "a@x.com", variant)
			assertKind(t, err, apperr.KindAuth, MsgInvalidCredentials)
		}
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		_, _, errUnknown := f.uc.Authenticate(context.Background(), "nobody@x.com", "longenough1")
		_, _, errWrong := f.uc.Authenticate(context.Background(), "a@x.com", "wrong")
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		assertKind(t, errUnknown, apperr.KindAuth, MsgInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := f.uc.Authenticate(context.Background(), "", "x")
		assertKind(t, err, apperr.KindValidation, MsgFillFullForm)
		_, _, err = f.uc.Authenticate(context.Background(), "a@x.com", "")
		assertKind(t, err, apperr.KindValidation, MsgFillFullForm)
	})
}

func TestVerifySession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t)
	_, sess, err := f.uc.Authenticate(context.Background(), "a@x.com", "longenough1")
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		_, err := f.uc.VerifySession(context.Background(), "")
		assertKind(t, err, apperr.KindUnauthenticated, MsgNotAuthenticated)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := f.uc.VerifySession(context.Background(), "abc.def.ghi")
		assertKind(t, err, apperr.KindUnauthenticated, MsgSessionInvalid)
	})

	t.Run("wrong signature", func(t *testing.T) {
		other, _, err := jwtmw.NewGenerator("other-secret", time.Hour).GenerateToken("u")
		require.NoError(t, err)
		_, err = f.uc.VerifySession(context.Background(), other)
		assertKind(t, err, apperr.KindUnauthenticated, MsgSessionInvalid)
	})

	t.Run("revocation lookup failure is tolerated", func(t *testing.T) {
		f.revocations.mu.Lock()
		f.revocations.checkErr = errors.New("redis timeout")
		f.revocations.mu.Unlock()
		defer func() {
			f.revocations.mu.Lock()
			f.revocations.checkErr = nil
			f.revocations.mu.Unlock()
		}()

		_, err := f.uc.VerifySession(context.Background(), sess.Token)
		assert.NoError(t, err)
	})
}

func TestVerifySession_Expired(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t)
	_, sess, err := f.uc.Authenticate(context.Background(), "a@x.com", "longenough1")
	require.NoError(t, err)

	f.advance(time.Hour + time.Second)

	_, err = f.uc.VerifySession(context.Background(), sess.Token)
	assertKind(t, err, apperr.KindUnauthenticated, MsgSessionInvalid)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("with revocation store the token stops working", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t)
		_, sess, err := f.uc.Authenticate(context.Background(), "a@x.com", "longenough1")
		require.NoError(t, err)
		claims, err := f.uc.VerifySession(context.Background(), sess.Token)
		require.NoError(t, err)

		f.advance(10 * time.Minute)
		require.NoError(t, f.uc.Logout(context.Background(), claims))

		assert.Equal(t, 50*time.Minute, f.revocations.revoked[claims.TokenID])
		_, err = f.uc.VerifySession(context.Background(), sess.Token)
		assertKind(t, err, apperr.KindUnauthenticated, MsgSessionRevoked)
	})

	t.Run("without revocation store the token stays valid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.uc.revocations = nil
		f.register(t)
		_, sess, err := f.uc.Authenticate(context.Background(), "a@x.com", "longenough1")
		require.NoError(t, err)
		claims, err := f.uc.VerifySession(context.Background(), sess.Token)
		require.NoError(t, err)

		require.NoError(t, f.uc.Logout(context.Background(), claims))

		_, err = f.uc.VerifySession(context.Background(), sess.Token)
		assert.NoError(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   ChangePasswordInput
		kind apperr.Kind
		msg  string
	}{
		{"missing field", ChangePasswordInput{CurrentPassword: "longenough1", NewPassword: "newpassword1"}, apperr.KindValidation, MsgFillAllFields},
		{"wrong current", ChangePasswordInput{"wrongpass", "newpassword1", "newpassword1"}, apperr.KindAuth, MsgIncorrectCurrent},
		{"mismatch", ChangePasswordInput{"longenough1", "newpassword1", "newpassword2"}, apperr.KindValidation, MsgNewPasswordMismatch},
		{"too short", ChangePasswordInput{"longenough1", "short", "short"}, apperr.KindValidation, MsgPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			user := f.register(t)
			before := f.users.get(user.ID).PasswordHash

			err := f.uc.ChangePassword(context.Background(), user.ID, tt.in)

			assertKind(t, err, tt.kind, tt.msg)
			assert.Equal(t, before, f.users.get(user.ID).PasswordHash, "stored hash must be unchanged")
		})
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.register(t)

		err := f.uc.ChangePassword(context.Background(), user.ID,
			ChangePasswordInput{"longenough1", "newpassword1", "newpassword1"})
		require.NoError(t, err)

		_, _, err = f.uc.Authenticate(context.Background(), "a@x.com", "newpassword1")
		assert.NoError(t, err)
		_, _, err = f.uc.Authenticate(context.Background(), "a@x.com", "longenough1")
		assertKind(t, err, apperr.KindAuth, MsgInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		err := f.uc.ChangePassword(context.Background(), "missing",
			ChangePasswordInput{"longenough1", "newpassword1", "newpassword1"})
		assertKind(t, err, apperr.KindNotFound, MsgUserNotFound)
	})
}

func TestRequestPasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("sends link and stores only the digest", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.register(t)

		msg, err := f.uc.RequestPasswordReset(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Email sent to a@x.com successfully", msg)

		assert.Equal(t, "a@x.com", f.mailer.to)
		assert.Equal(t, ResetMailSubject, f.mailer.subject)
		assert.Contains(t, f.mailer.body, "https://dash.test/password/reset/")
		token := tokenFromBody(f.mailer.body)
		require.Len(t, token, 40)

		stored := f.users.get(user.ID)
		require.NotNil(t, stored.ResetTokenHash)
		require.NotNil(t, stored.ResetTokenExpiry)
		assert.NotEqual(t, token, *stored.ResetTokenHash)
		assert.Equal(t, digestResetToken([]byte("reset-secret"), token), *stored.ResetTokenHash)
		assert.Equal(t, f.clock.Load().Add(15*time.Minute), *stored.ResetTokenExpiry)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.uc.RequestPasswordReset(context.Background(), "nobody@x.com")
		assertKind(t, err, apperr.KindNotFound, MsgUserNotFound)
		assert.Empty(t, f.mailer.to)
	})

	t.Run("delivery failure rolls back", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.register(t)
		f.mailer.SendFunc = func(context.Context, string, string, string) error {
			return errors.New("smtp: 421 service not available")
		}

		_, err := f.uc.RequestPasswordReset(context.Background(), "a@x.com")

		assertKind(t, err, apperr.KindDelivery, MsgMailFailed)
		stored := f.users.get(user.ID)
		assert.Nil(t, stored.ResetTokenHash)
		assert.Nil(t, stored.ResetTokenExpiry)
		assert.Equal(t, 1, f.users.clearCalls)
	})

	t.Run("rollback survives a cancelled request", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.register(t)
		ctx, cancel := context.WithCancel(context.Background())
		f.mailer.SendFunc = func(context.Context, string, string, string) error {
			cancel()
			return context.Canceled
		}

		_, err := f.uc.RequestPasswordReset(ctx, "a@x.com")

		assertKind(t, err, apperr.KindDelivery, "")
		assert.Nil(t, f.users.get(user.ID).ResetTokenHash)
	})
}

func resetToken(t *testing.T, f *fixture) string {
	t.Helper()
	_, err := f.uc.RequestPasswordReset(context.Background(), "a@x.com")
	require.NoError(t, err)
	token := tokenFromBody(f.mailer.body)
	require.NotEmpty(t, token)
	return token
}

func TestConsumePasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("single use", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		user := f.register(t)
		token := resetToken(t, f)

		got, sess, err := f.uc.ConsumePasswordReset(context.Background(), token,
			ResetPasswordInput{"brandnew123", "brandnew123"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, sess.Token)
		assert.False(t, f.users.get(user.ID).ResetPending(*f.clock.Load()))

		_, _, err = f.uc.Authenticate(context.Background(), "a@x.com", "brandnew123")
		assert.NoError(t, err)

		_, _, err = f.uc.ConsumePasswordReset(context.Background(), token,
			ResetPasswordInput{"another123", "another123"})
		assertKind(t, err, apperr.KindAuth, MsgResetTokenInvalid)
	})

	t.Run("expired after fifteen minutes", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t)
		token := resetToken(t, f)

		f.advance(15*time.Minute + time.Second)

		_, _, err := f.uc.ConsumePasswordReset(context.Background(), token,
			ResetPasswordInput{"brandnew123", "brandnew123"})
		assertKind(t, err, apperr.KindAuth, MsgResetTokenInvalid)
	})

	t.Run("second request invalidates the first token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t)
		first := resetToken(t, f)
		second := resetToken(t, f)
		require.NotEqual(t, first, second)

		_, _, err := f.uc.ConsumePasswordReset(context.Background(), first,
			ResetPasswordInput{"brandnew123", "brandnew123"})
		assertKind(t, err, apperr.KindAuth, MsgResetTokenInvalid)

		_, _, err = f.uc.ConsumePasswordReset(context.Background(), second,
			ResetPasswordInput{"brandnew123", "brandnew123"})
		assert.NoError(t, err)
	})

	t.Run("mismatch keeps the token usable", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t)
		token := resetToken(t, f)

		_, _, err := f.uc.ConsumePasswordReset(context.Background(), token,
			ResetPasswordInput{"brandnew123", "brandnew124"})
		assertKind(t, err, apperr.KindValidation, MsgResetPasswordMismatch)

		_, _, err = f.uc.ConsumePasswordReset(context.Background(), token,
			ResetPasswordInput{"short", "short"})
		assertKind(t, err, apperr.KindValidation, MsgPasswordTooShort)

		_, _, err = f.uc.ConsumePasswordReset(context.Background(), token,
			ResetPasswordInput{"brandnew123", "brandnew123"})
		assert.NoError(t, err)
	})

	t.Run("concurrent consumers: exactly one wins", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.register(t)
		token := resetToken(t, f)

		const n = 8
		var wg sync.WaitGroup
		var ok atomic.Int32
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := f.uc.ConsumePasswordReset(context.Background(), token,
					ResetPasswordInput{"brandnew123", "brandnew123"})
				if err == nil {
					ok.Add(1)
				} else {
					assert.True(t, apperr.Is(err, apperr.KindAuth))
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), ok.Load())
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, _, err := f.uc.ConsumePasswordReset(context.Background(), "deadbeef",
			ResetPasswordInput{"brandnew123", "brandnew123"})
		assertKind(t, err, apperr.KindAuth, MsgResetTokenInvalid)
	})
}

func TestScenario_RegisterThenAuthenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t)

	_, sess, err := f.uc.Authenticate(context.Background(), "a@x.com", "longenough1")
	require.NoError(t, err)
	_, err = f.uc.VerifySession(context.Background(), sess.Token)
	require.NoError(t, err)

	_, _, err = f.uc.Authenticate(context.Background(), "a@x.com", "wrong")
	assertKind(t, err, apperr.KindAuth, "")
}
