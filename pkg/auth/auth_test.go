package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func testConfig() *JWTConfig {
	return &JWTConfig{
		Secret:           "session-secret-for-tests-0123456789abcd",
		Issuer:           "ticketbox",
		ExpirationTime:   time.Hour,
		RefreshExpiresIn: 48 * time.Hour,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(5, "a@b.com", []string{"USER", "APPROVER"}, cfg, time.Now())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token, cfg)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 5 || claims.Email != "a@b.com" || len(claims.Roles) != 2 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseToken_Expired(t *testing.T) {
	cfg := testConfig()
	token, _ := GenerateToken(5, "a@b.com", nil, cfg, time.Now().Add(-2*time.Hour))

	if _, err := ParseToken(token, cfg); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	cfg := testConfig()
	token, _ := GenerateToken(5, "a@b.com", nil, cfg, time.Now())

	other := testConfig()
	other.Secret = "a-completely-different-secret-0123456789"
	if _, err := ParseToken(token, other); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshToken_Separation(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	refresh, err := GenerateRefreshToken(5, "a@b.com", cfg, now)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	claims, err := ParseRefreshToken(refresh, cfg, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ParseRefreshToken: %v", err)
	}
	if claims.UserID != 5 || claims.Type != TokenTypeRefresh || len(claims.Roles) != 0 {
		t.Fatalf("unexpected refresh claims: %+v", claims)
	}

	// Refresh token oturum açmaz, access token yenileme yapmaz.
	if _, err := NewJWTGuard(cfg).Authenticate(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected guard to reject refresh token, got %v", err)
	}
	access, _ := GenerateToken(5, "a@b.com", []string{"USER"}, cfg, now)
	if _, err := ParseRefreshToken(access, cfg, now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected access token to be refused for refresh, got %v", err)
	}

	if _, err := ParseRefreshToken(refresh, cfg, now.Add(49*time.Hour)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired refresh token, got %v", err)
	}

	cfg.RefreshExpiresIn = 0
	if _, err := GenerateRefreshToken(5, "a@b.com", cfg, now); err == nil {
		t.Fatal("expected error without refresh lifetime")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := map[string]string{
		"Bearer abc.def": "abc.def",
		"bearer xyz":     "xyz",
		"Basic abc":      "",
		"Bearer ":        "",
		"":               "",
	}
	for header, want := range tests {
		if got := ExtractTokenFromHeader(header); got != want {
			t.Errorf("ExtractTokenFromHeader(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestJWTGuard_Authenticate(t *testing.T) {
	cfg := testConfig()
	guard := NewJWTGuard(cfg)
	token, _ := GenerateToken(9, "g@b.com", []string{"ADMIN"}, cfg, time.Now())

	identity, err := guard.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !identity.HasRole("APPROVER", "ADMIN") {
		t.Fatalf("expected admin role, got %v", identity.Roles)
	}

	ctx := WithUser(context.Background(), identity)
	got, ok := UserFromContext(ctx)
	if !ok || got.ID != 9 {
		t.Fatalf("expected identity 9 in context, got %+v", got)
	}

	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatalf("expected no identity in empty context")
	}
}

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Check("s3cret!", hash) {
		t.Fatalf("expected password to match")
	}
	if h.Check("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
	if _, err := h.Hash(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
