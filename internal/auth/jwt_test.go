package auth

import (
	"testing"
	"time"
)

func testConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "orgflow",
		Audience: "orgflow-chat",
		TTL:      time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "42", "Pat", "manager")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "42" || claims.Name != "Pat" || claims.Role != "manager" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "42", "Pat", "manager")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := testConfig()
	other.Secret = []byte("different-secret")
	if _, err := ValidateToken(other, token); err == nil {
		t.Fatal("expected validation to fail with wrong secret")
	}
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.Issuer = "someone-else"
	token, err := GenerateToken(cfg, "42", "Pat", "manager")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(testConfig(), token); err == nil {
		t.Fatal("expected validation to fail with wrong issuer")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute
	token, err := GenerateToken(cfg, "42", "Pat", "manager")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(testConfig(), token); err == nil {
		t.Fatal("expected validation to fail for expired token")
	}
}

func TestValidateRejectsMissingUserID(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "", "Pat", "manager")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(cfg, token); err == nil {
		t.Fatal("expected validation to fail without a user id")
	}
}
