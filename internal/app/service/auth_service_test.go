package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"codexa/internal/common"
	"codexa/internal/common/security"
	"codexa/internal/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newAuthTestEnv(t *testing.T) (*AuthService, *memUserRepo, *redis.Client) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey: []byte("test-secret"),
		JWTExp: time.Hour,
	}
	security.InitJWT()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	userRepo := newMemUserRepo()
	svc := NewAuthService(userRepo, newMemSubmissionRepo(), rdb, nil)
	return svc, userRepo, rdb
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthTestEnv(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "difference-engine",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if resp.Token == "" {
		t.Error("no token issued")
	}
	if resp.User.HashedPassword != "" {
		t.Error("password hash leaked in response")
	}
	if resp.User.Role != "user" {
		t.Errorf("role = %q", resp.User.Role)
	}

	login, err := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "difference-engine"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("login user %q != registered user %q", login.User.ID, resp.User.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthTestEnv(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing first name", RegisterRequest{Email: "a@b.com", Password: "longenough"}},
		{"bad email", RegisterRequest{FirstName: "A", Email: "not-an-email", Password: "longenough"}},
		{"short password", RegisterRequest{FirstName: "A", Email: "a@b.com", Password: "short"}},
	}
	for _, tt := range tests {
		if _, err := svc.Register(context.Background(), tt.req); !errors.Is(err, common.ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", tt.name, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthTestEnv(t)
	req := RegisterRequest{FirstName: "Ada", Email: "ada@example.com", Password: "difference-engine"}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("duplicate email: got %v", err)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	svc, _, _ := newAuthTestEnv(t)
	if _, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada", Email: "ada@example.com", Password: "difference-engine",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// wrong password and unknown user are indistinguishable to the caller
	_, wrongPass := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	_, unknownUser := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if !errors.Is(wrongPass, common.ErrUnauthorized) {
		t.Errorf("wrong password: got %v", wrongPass)
	}
	if !errors.Is(unknownUser, common.ErrUnauthorized) {
		t.Errorf("unknown user: got %v", unknownUser)
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Errorf("credential errors differ: %q vs %q", wrongPass, unknownUser)
	}
}

func TestRegisterAdminRole(t *testing.T) {
	svc, _, _ := newAuthTestEnv(t)
	resp, err := svc.RegisterAdmin(context.Background(), RegisterRequest{
		FirstName: "Root", Email: "root@example.com", Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("RegisterAdmin error: %v", err)
	}
	if resp.User.Role != "admin" {
		t.Errorf("role = %q", resp.User.Role)
	}
}

func TestLogoutBlocklistsToken(t *testing.T) {
	svc, _, rdb := newAuthTestEnv(t)
	resp, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada", Email: "ada@example.com", Password: "difference-engine",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	blocked, err := IsTokenBlocked(context.Background(), rdb, resp.Token)
	if err != nil {
		t.Fatalf("IsTokenBlocked error: %v", err)
	}
	if blocked {
		t.Fatal("fresh token must not be blocked")
	}

	if err := svc.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	blocked, err = IsTokenBlocked(context.Background(), rdb, resp.Token)
	if err != nil {
		t.Fatalf("IsTokenBlocked error: %v", err)
	}
	if !blocked {
		t.Fatal("token must be blocked after logout")
	}

	ttl := rdb.TTL(context.Background(), "token:"+resp.Token).Val()
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("blocklist ttl = %v, want within token lifetime", ttl)
	}
}

func TestLogoutMalformedToken(t *testing.T) {
	svc, _, _ := newAuthTestEnv(t)
	if err := svc.Logout(context.Background(), "not-a-jwt"); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestGetUserStripsHash(t *testing.T) {
	svc, userRepo, _ := newAuthTestEnv(t)
	resp, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada", Email: "ada@example.com", Password: "difference-engine",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	user, err := svc.GetUser(context.Background(), resp.User.ID)
	if err != nil {
		t.Fatalf("GetUser error: %v", err)
	}
	if user.HashedPassword != "" {
		t.Error("password hash leaked")
	}

	// the stored row still has the hash
	stored, _ := userRepo.FindByID(context.Background(), resp.User.ID)
	if stored.HashedPassword == "" {
		t.Error("stored hash was wiped")
	}
}
