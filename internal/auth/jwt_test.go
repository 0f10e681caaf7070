package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "ops", RoleOperator, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Operator != "ops" || claims.Role != RoleOperator || claims.Subject != "ops" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	good, err := GenerateToken(testSecret, "ops", RoleOperator, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	expired, err := GenerateToken(testSecret, "ops", RoleOperator, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", strings.Repeat("x", 32), good},
		{"expired", testSecret, expired},
		{"garbage", testSecret, "not.a.token"},
		{"short secret", "short", good},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.secret, tt.token); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestGenerateTokenNeedsLongSecret(t *testing.T) {
	if _, err := GenerateToken("short", "ops", RoleOperator, time.Hour); err == nil {
		t.Error("expected an error for a short secret")
	}
}
