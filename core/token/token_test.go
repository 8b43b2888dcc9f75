package token

import (
	"strings"
	"testing"
	"time"

	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/user"
)

const secret = "test-signing-secret"

func TestRoundTrip(t *testing.T) {
	expiresAt := time.Now().Add(time.Minute).Unix()

	tkn, err := Generate("user-42", expiresAt, Access, secret)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	clm, err := Parse(tkn, Access, secret)
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}

	if clm.Subject != "user-42" {
		t.Errorf("subject = %q, want %q", clm.Subject, "user-42")
	}
	if clm.Type != Access {
		t.Errorf("type = %q, want %q", clm.Type, Access)
	}
	if got := clm.ExpiresAt.Unix(); got != expiresAt {
		t.Errorf("expiry = %d, want %d", got, expiresAt)
	}
}

func TestParseExpired(t *testing.T) {
	expiresAt := time.Now().Add(-time.Minute).Unix()

	tkn, err := Generate("user-42", expiresAt, Access, secret)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, err := Parse(tkn, Access, secret); err == nil {
		t.Fatal("expected an expired token to be rejected")
	}
}

func TestParseWrongSecret(t *testing.T) {
	expiresAt := time.Now().Add(time.Minute).Unix()

	tkn, err := Generate("user-42", expiresAt, Access, secret)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, err := Parse(tkn, Access, "other-secret"); err == nil {
		t.Fatal("expected a token signed with another secret to be rejected")
	}
}

func TestParseWrongType(t *testing.T) {
	expiresAt := time.Now().Add(time.Minute).Unix()

	tkn, err := Generate("user-42", expiresAt, Refresh, secret)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, err := Parse(tkn, Access, secret); err == nil {
		t.Fatal("expected a refresh token to be rejected where access is required")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse("not.a.token", Access, secret); err == nil {
		t.Fatal("expected garbage to be rejected")
	}
}

func TestGenerateAuthTokens(t *testing.T) {
	cfg := config.JWT{Secret: secret, AccessExpirationMinutes: 30}
	usr := user.User{ID: "user-42", Email: "test@test.com"}

	before := time.Now()
	tkns, err := GenerateAuthTokens(usr, cfg)
	if err != nil {
		t.Fatalf("generating auth tokens: %v", err)
	}

	if strings.Count(tkns.Access.Token, ".") != 2 {
		t.Errorf("token %q is not a three-part JWT", tkns.Access.Token)
	}

	clm, err := Parse(tkns.Access.Token, Access, secret)
	if err != nil {
		t.Fatalf("parsing issued token: %v", err)
	}

	if clm.Subject != usr.ID {
		t.Errorf("subject = %q, want %q", clm.Subject, usr.ID)
	}

	// The reported expiry must be the signed claim, not a second clock read.
	if !clm.ExpiresAt.Time.Equal(tkns.Access.Expires) {
		t.Errorf("reported expiry %v differs from signed claim %v", tkns.Access.Expires, clm.ExpiresAt.Time)
	}

	lifetime := tkns.Access.Expires.Sub(before.Truncate(time.Second))
	if lifetime < 29*time.Minute || lifetime > 31*time.Minute {
		t.Errorf("lifetime = %v, want about 30m", lifetime)
	}
}
