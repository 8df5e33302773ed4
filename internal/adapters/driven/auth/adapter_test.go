package auth

import (
	"testing"
	"time"
)

func TestGenerateToken_ProducesThreePartJWT(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	token, err := adapter.GenerateToken("pii-client-1", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	dots := 0
	for _, c := range token {
		if c == '.' {
			dots++
		}
	}
	if dots != 2 {
		t.Errorf("expected a 3-part JWT (2 dots), got %d dots", dots)
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	token, err := adapter.GenerateToken("pii-client-1", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	serviceID, err := adapter.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if serviceID != "pii-client-1" {
		t.Errorf("expected service id %q, got %q", "pii-client-1", serviceID)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	token, err := adapter.GenerateToken("pii-client-1", -time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := adapter.ParseToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := NewAdapter("secret-1")
	verifier := NewAdapter("secret-2")

	token, err := issuer.GenerateToken("pii-client-1", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := verifier.ParseToken(token); err == nil {
		t.Error("expected error when parsing a token signed with a different secret")
	}
}

func TestParseToken_MalformedToken(t *testing.T) {
	adapter := NewAdapter("test-secret")

	cases := []string{"", "not-a-jwt", "only.two.parts", "header.payload"}
	for _, c := range cases {
		if _, err := adapter.ParseToken(c); err == nil {
			t.Errorf("expected error for malformed token: %q", c)
		}
	}
}
