package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/qkart/backend/api/web"
	"github.com/qkart/backend/api/weberr"
	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/claims"
	"github.com/qkart/backend/core/token"
	"github.com/qkart/backend/core/user"
)

// unauthorized hides the concrete verification failure behind the one
// message clients are shown.
func unauthorized(err error) error {
	return weberr.NewError(err, "Please authenticate", http.StatusUnauthorized)
}

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header is not a bearer token")
	}

	return parts[1], nil
}

// Authenticate verifies the bearer token and resolves the user it names
// before any downstream handler runs. Invalid signature, expiry, or an
// unresolvable subject all divert to the error path with a 401.
func Authenticate(db *sqlx.DB, cfg config.JWT) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			tkn, err := bearerToken(r)
			if err != nil {
				return unauthorized(err)
			}

			clm, err := token.Parse(tkn, token.Access, cfg.Secret)
			if err != nil {
				return unauthorized(err)
			}

			usr, err := user.Fetch(ctx, db, clm.Subject)
			if err != nil {
				return unauthorized(err)
			}

			ctx = claims.Set(ctx, claims.Claims{UserID: usr.ID, Email: usr.Email})
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
