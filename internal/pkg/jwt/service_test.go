package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestHMACService_RoundTrip(t *testing.T) {
	svc := NewHMACService("access-secret", time.Minute, WithIssuer("skill-swap"))

	tok, err := svc.Issue("01HZX3", "ana@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID() != "01HZX3" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("access-secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := svc.Issue("u1", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACService_Rejects(t *testing.T) {
	svc := NewHMACService("access-secret", time.Minute, WithIssuer("skill-swap"))

	foreign, _ := NewHMACService("other", time.Minute, WithIssuer("skill-swap")).Issue("u1", "")
	otherIssuer, _ := NewHMACService("access-secret", time.Minute, WithIssuer("elsewhere")).Issue("u1", "")

	cases := map[string]string{
		"foreign secret": foreign,
		"other issuer":   otherIssuer,
		"garbage":        "not-a-token",
	}
	for name, tok := range cases {
		if _, err := svc.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("%s: expected ErrTokenInvalid, got %v", name, err)
		}
	}

	if _, err := svc.Issue("  ", ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for empty subject, got %v", err)
	}
}
