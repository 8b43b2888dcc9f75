package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/qkart/backend/api/web"
	"github.com/qkart/backend/api/weberr"
	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/token"
	"github.com/qkart/backend/core/user"
	"github.com/qkart/backend/rate"
	"github.com/qkart/backend/validate"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User   user.User        `json:"user"`
	Tokens token.AuthTokens `json:"tokens"`
}

func HandleRegister(db *sqlx.DB, cartCfg config.Cart, jwtCfg config.JWT) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var nu user.New
		if err := web.Decode(w, r, &nu); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(nu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := user.FetchByEmail(ctx, db, nu.Email); err == nil {
			err := errors.New("email is already registered")
			return weberr.NewError(err, "Email already taken", http.StatusBadRequest)
		} else if !errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("checking email availability: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:           validate.GenerateID(),
			Name:         nu.Name,
			Email:        nu.Email,
			PasswordHash: string(hash),
			WalletMoney:  cartCfg.DefaultWalletMoney,
			Address:      cartCfg.DefaultAddress,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, usr); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		tkns, err := token.GenerateAuthTokens(usr, jwtCfg)
		if err != nil {
			return fmt.Errorf("generating auth tokens: %w", err)
		}

		return web.Respond(ctx, w, authResponse{User: usr, Tokens: tkns}, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, jwtCfg config.JWT, limiter *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var creds credentials
		if err := web.Decode(w, r, &creds); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(creds); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if !limiter.Check(creds.Email) {
			err := errors.New("too many login attempts")
			return weberr.NewError(err, "too many login attempts, retry later", http.StatusTooManyRequests)
		}

		usr, err := user.FetchByEmail(ctx, db, creds.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return incorrectCredentials(err)
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(creds.Password)); err != nil {
			return incorrectCredentials(err)
		}

		tkns, err := token.GenerateAuthTokens(usr, jwtCfg)
		if err != nil {
			return fmt.Errorf("generating auth tokens: %w", err)
		}

		return web.Respond(ctx, w, authResponse{User: usr, Tokens: tkns}, http.StatusOK)
	}
}

func incorrectCredentials(err error) error {
	return weberr.NewError(err, "Incorrect email or password", http.StatusUnauthorized)
}
