package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(secret string, expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: secret,
		Expiry: expiry,
		Issuer: "craftclass-storefront-api",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := newTestManager("test-secret", time.Hour)

	token, err := manager.GenerateToken(42, "admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate freshly minted token: %v", err)
	}
	if claims.InstructorID != 42 {
		t.Errorf("expected instructor 42, got %d", claims.InstructorID)
	}
	if claims.Role != "admin" {
		t.Errorf("expected admin role, got %q", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := newTestManager("test-secret", time.Hour)
	other := newTestManager("different-secret", time.Hour)

	token, err := manager.GenerateToken(7, "instructor")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign secret, got %v", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	manager := newTestManager("test-secret", -time.Minute)

	token, err := manager.GenerateToken(7, "instructor")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}
