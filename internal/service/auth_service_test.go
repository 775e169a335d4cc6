package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"artforge/internal/config"
	"artforge/internal/models"
	"artforge/internal/repository"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func (f *fakeUsers) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[string]models.Session
}

func (f *fakeSessions) Create(_ context.Context, s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.LastSeenAt = time.Now()
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSessions) CountByUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.byID {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) DeleteOldestSessions(_ context.Context, userID string, keepLatest int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		var oldest *models.Session
		n := 0
		for _, s := range f.byID {
			if s.UserID != userID {
				continue
			}
			n++
			if oldest == nil || s.LastSeenAt.Before(oldest.LastSeenAt) {
				s := s
				oldest = &s
			}
		}
		if n <= keepLatest || oldest == nil {
			return nil
		}
		delete(f.byID, oldest.ID)
	}
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) FindByRefreshHash(_ context.Context, userID string, hash []byte) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.UserID == userID && bytes.Equal(s.RefreshTokenHash, hash) {
			return s, nil
		}
	}
	return models.Session{}, repository.ErrSessionNotFound
}

func (f *fakeSessions) Rotate(_ context.Context, id string, hash []byte, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.RefreshTokenHash = hash
	s.ExpiresAt = expiresAt
	f.byID[id] = s
	return nil
}

func (f *fakeSessions) DeleteByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) Touch(context.Context, string, string, string) error { return nil }

func newAuthFixture() (*AuthService, *fakeUsers, *fakeSessions) {
	users := &fakeUsers{byID: make(map[string]models.User)}
	sessions := &fakeSessions{byID: make(map[string]models.Session)}
	svc := NewAuthService(users, sessions, config.SecurityConfig{
		JWTAccessSecret: "test-secret",
		JWTAccessTTL:    time.Minute,
		JWTRefreshTTL:   time.Hour,
		MaxSessions:     2,
	}, zerolog.Nop())
	return svc, users, sessions
}

func TestAuthRegisterLoginAuthenticate(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if registered.User.Email != "ada@example.com" || registered.User.DisplayName != "ada" {
		t.Errorf("registered user = %+v", registered.User)
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "secret1"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register() error = %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "nope"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password Login() error = %v", err)
	}

	login, err := svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	user, claims, err := svc.Authenticate(ctx, login.AccessToken, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.ID != registered.User.ID || claims.SessionID != login.SessionID {
		t.Errorf("Authenticate() = %+v, %+v", user, claims)
	}

	if err := svc.Logout(ctx, login.SessionID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, login.AccessToken, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() after logout error = %v", err)
	}
	if err := svc.Logout(ctx, login.SessionID); err != nil {
		t.Errorf("repeated Logout() error = %v", err)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthFixture()
	for _, input := range []RegisterInput{
		{Email: "", Password: "secret1"},
		{Email: "not-an-email", Password: "secret1"},
		{Email: "a@example.com", Password: "short"},
	} {
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Register(%+v) error = %v, want ErrInvalidInput", input, err)
		}
	}
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := svc.Refresh(ctx, RefreshInput{UserID: first.User.ID, RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if rotated.RefreshToken == first.RefreshToken || rotated.SessionID != first.SessionID {
		t.Errorf("Refresh() = %+v", rotated)
	}

	if _, err := svc.Refresh(ctx, RefreshInput{UserID: first.User.ID, RefreshToken: first.RefreshToken}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("reused refresh token error = %v", err)
	}
}

func TestAuthSuspendedUser(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	u := users.byID[res.User.ID]
	u.Status = models.UserStatusSuspended
	users.byID[u.ID] = u

	if _, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "secret1"}); !errors.Is(err, ErrUserSuspended) {
		t.Errorf("Login() error = %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, res.AccessToken, "", ""); !errors.Is(err, ErrUserSuspended) {
		t.Errorf("Authenticate() error = %v", err)
	}
}

func TestAuthSessionLimit(t *testing.T) {
	svc, _, sessions := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "secret1"}); err != nil {
			t.Fatal(err)
		}
	}
	if len(sessions.byID) != 2 {
		t.Errorf("sessions = %d, want 2", len(sessions.byID))
	}
}
