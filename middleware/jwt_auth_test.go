package middleware

import (
	"testing"

	"stock-alert-backend/config"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{
		JWTSecret:      "test-secret",
		JWTExpiryHours: 1,
	}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestIssueAndValidateToken(t *testing.T) {
	setupTestConfig(t)

	token, err := IssueToken("user-123", "user@example.com", false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := validateToken(token)
	if err != nil {
		t.Fatalf("validateToken failed: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %s", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("expected email user@example.com, got %s", claims.Email)
	}
	if claims.IsAdmin {
		t.Error("expected non-admin claims")
	}
}

func TestValidateTokenAdminFlag(t *testing.T) {
	setupTestConfig(t)

	token, err := IssueToken("admin-1", "admin@localhost", true)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	claims, err := validateToken(token)
	if err != nil {
		t.Fatalf("validateToken failed: %v", err)
	}
	if !claims.IsAdmin {
		t.Error("expected admin claims")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	setupTestConfig(t)

	if _, err := validateToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	setupTestConfig(t)

	token, err := IssueToken("user-123", "user@example.com", false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	config.AppConfig.JWTSecret = "different-secret"
	if _, err := validateToken(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}
