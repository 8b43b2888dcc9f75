package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/user"
)

// Type discriminates what a signed token may be used for.
type Type string

const (
	Access  Type = "ACCESS"
	Refresh Type = "REFRESH"
)

// Claims is the payload carried by every token: the user id as subject, the
// token type, and the signed expiry and issue instants in epoch seconds.
type Claims struct {
	Type Type `json:"type"`
	jwt.RegisteredClaims
}

// Generate signs a token for userID expiring at the given epoch second.
// It is a pure computation with no side effects.
func Generate(userID string, expiresAt int64, typ Type, secret string) (string, error) {
	clm := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	tkn, err := jwt.NewWithClaims(jwt.SigningMethodHS256, clm).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return tkn, nil
}

type Info struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type AuthTokens struct {
	Access Info `json:"access"`
}

// GenerateAuthTokens issues the access token a freshly authenticated user
// presents on subsequent requests. The expiry is computed once in epoch
// seconds; the calendar form reported to the client derives from the same
// value, so the signed claim and the reported expiry cannot drift.
func GenerateAuthTokens(usr user.User, cfg config.JWT) (AuthTokens, error) {
	expiresAt := time.Now().Unix() + int64(cfg.AccessExpirationMinutes)*60

	tkn, err := Generate(usr.ID, expiresAt, Access, cfg.Secret)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("generating access token: %w", err)
	}

	return AuthTokens{
		Access: Info{
			Token:   tkn,
			Expires: time.Unix(expiresAt, 0).UTC(),
		},
	}, nil
}

// Parse verifies signature, expiry and type, returning the embedded claims.
func Parse(tknStr string, typ Type, secret string) (Claims, error) {
	var clm Claims

	t, err := jwt.ParseWithClaims(tknStr, &clm, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}

	if !t.Valid {
		return Claims{}, errors.New("token is not valid")
	}

	if clm.Type != typ {
		return Claims{}, fmt.Errorf("token type is %q, want %q", clm.Type, typ)
	}

	return clm, nil
}
