package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewJWTManagerFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_ISSUER", "issuer-for-test")

	manager, err := NewJWTManagerFromEnv()
	if err == nil {
		t.Fatalf("expected error when JWT_SECRET is empty")
	}
	if manager != nil {
		t.Fatalf("expected nil manager when env is invalid")
	}
}

func TestNewJWTManagerFromEnvUsesDefaultIssuer(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "")

	manager, err := NewJWTManagerFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manager.issuer != "youth-press" {
		t.Fatalf("expected default issuer youth-press, got %q", manager.issuer)
	}
	if manager.ttl != 24*time.Hour {
		t.Fatalf("expected default ttl 24h, got %s", manager.ttl)
	}
}

func TestJWTManagerSignAndParseRoundTrip(t *testing.T) {
	manager, err := NewJWTManager("test-secret", "test-issuer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := manager.Sign("user-001")
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	userID, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if userID != "user-001" {
		t.Fatalf("expected user-001, got %q", userID)
	}
}

func signWith(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func testManager() *JWTManager {
	return &JWTManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}
}

func TestJWTManagerParseRejectsInvalidSignature(t *testing.T) {
	tokenString := signWith(t, "other-secret", jwt.MapClaims{
		"sub": "user-001",
		"iss": "issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := testManager().Parse(tokenString); err == nil {
		t.Fatalf("expected parse error for invalid signature")
	}
}

func TestJWTManagerParseRejectsMissingSubClaim(t *testing.T) {
	tokenString := signWith(t, "service-secret", jwt.MapClaims{
		"iss": "issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := testManager().Parse(tokenString)
	if err == nil {
		t.Fatalf("expected parse error for missing sub claim")
	}
	if !strings.Contains(err.Error(), "token missing sub claim") {
		t.Fatalf("expected missing sub error, got %v", err)
	}
}

func TestJWTManagerParseRejectsForeignIssuer(t *testing.T) {
	tokenString := signWith(t, "service-secret", jwt.MapClaims{
		"sub": "user-001",
		"iss": "another-service",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := testManager().Parse(tokenString); err == nil {
		t.Fatalf("expected parse error for foreign issuer")
	}
}

func TestJWTManagerParseRejectsExpiredAndNonExpiring(t *testing.T) {
	expired := signWith(t, "service-secret", jwt.MapClaims{
		"sub": "user-001",
		"iss": "issuer",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	if _, err := testManager().Parse(expired); err == nil {
		t.Fatalf("expected parse error for expired token")
	}

	forever := signWith(t, "service-secret", jwt.MapClaims{
		"sub": "user-001",
		"iss": "issuer",
	})
	if _, err := testManager().Parse(forever); err == nil {
		t.Fatalf("expected parse error for token without exp")
	}
}
