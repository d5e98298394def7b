package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"portfolio_backend/internal/feature/auth/domain/entity"
	jwtmw "portfolio_backend/internal/platform/jwt"
)

// memUserRepository is an in-memory UserRepository with the same semantics as the gorm adapter.
type memUserRepository struct {
	mu    sync.Mutex
	users map[string]entity.User

	// createErr, when set, is returned by Create.
	createErr error
	// clearCalls counts ClearResetToken calls.
	clearCalls int
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: map[string]entity.User{}}
}

func (m *memUserRepository) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailAlreadyExists
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memUserRepository) find(match func(entity.User) bool, withPassword bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			if !withPassword {
				u.PasswordHash = ""
			}
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memUserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.ID == id }, false)
}

func (m *memUserRepository) FindByIDWithPassword(_ context.Context, id string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.ID == id }, true)
}

func (m *memUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.Email == email }, false)
}

func (m *memUserRepository) FindByEmailWithPassword(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.Email == email }, true)
}

func (m *memUserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memUserRepository) SetResetToken(_ context.Context, id, hash string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.ResetTokenHash = &hash
	u.ResetTokenExpiry = &expiry
	m.users[id] = u
	return nil
}

func (m *memUserRepository) ClearResetToken(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	m.users[id] = u
	return nil
}

func (m *memUserRepository) FindByResetToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	u, err := m.find(func(u entity.User) bool {
		return u.ResetTokenHash != nil && *u.ResetTokenHash == hash && u.ResetPending(now)
	}, false)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrResetTokenNotFound
	}
	return u, err
}

func (m *memUserRepository) ConsumeResetToken(_ context.Context, id, hash, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.ResetTokenHash == nil || *u.ResetTokenHash != hash {
		return ErrResetTokenNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	m.users[id] = u
	return nil
}

func (m *memUserRepository) get(id string) entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

// mockFileStore records uploads and deletions.
type mockFileStore struct {
	mu        sync.Mutex
	UploadErr error
	uploaded  []entity.Upload
	deleted   []string
}

func (m *mockFileStore) Upload(_ context.Context, f entity.Upload) (entity.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return entity.StoredFile{}, m.UploadErr
	}
	m.uploaded = append(m.uploaded, f)
	return entity.StoredFile{PublicID: f.Key, URL: "https://cdn.test/" + f.Key, Filename: f.Filename}, nil
}

func (m *mockFileStore) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, publicID)
	return nil
}

// mockMailer captures the last message.
type mockMailer struct {
	SendFunc func(ctx context.Context, to, subject, body string) error
	to       string
	subject  string
	body     string
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	return nil
}

// tokenFromBody extracts the plaintext reset token from a recovery mail.
func tokenFromBody(body string) string {
	const marker = "/password/reset/"
	i := strings.Index(body, marker)
	if i < 0 {
		return ""
	}
	rest := body[i+len(marker):]
	if j := strings.IndexAny(rest, " \n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// mockRevocations is a map-backed RevocationStore.
type mockRevocations struct {
	mu       sync.Mutex
	revoked  map[string]time.Duration
	checkErr error
}

func newMockRevocations() *mockRevocations {
	return &mockRevocations{revoked: map[string]time.Duration{}}
}

func (m *mockRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = ttl
	return nil
}

func (m *mockRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checkErr != nil {
		return false, m.checkErr
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

var _ TokenIssuer = (*jwtmw.Generator)(nil)
