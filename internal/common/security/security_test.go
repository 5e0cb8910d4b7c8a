package security

import (
	"testing"
	"time"

	"codexa/internal/platform/config"
)

func initTestJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey: []byte("test-secret"),
		JWTExp: time.Hour,
	}
	InitJWT()
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	initTestJWT(t)

	tokenString, err := GenerateToken("user-1", "user@example.com", "admin")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = TokenAuth.Decode(tokenString)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	exp, err := TokenExpiry(tokenString)
	if err != nil {
		t.Fatalf("TokenExpiry error: %v", err)
	}
	until := time.Until(exp)
	if until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("token expiry %v from now, want about an hour", until)
	}
}

func TestTokenExpiryMalformed(t *testing.T) {
	if _, err := TokenExpiry("garbage"); err == nil {
		t.Error("expected error for malformed token")
	}
}
