package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jmoiron/sqlx"
	"github.com/qkart/backend/api/web"
	"github.com/qkart/backend/api/weberr"
	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/token"
	"github.com/qkart/backend/core/user"
	"github.com/qkart/backend/random"
	"github.com/qkart/backend/validate"
	"golang.org/x/oauth2"
)

const stateCookie = "oauth_state"

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

type Provider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders discovers each provider's OIDC endpoints. Discovery happens
// once at startup, not per login.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	providers := make(map[string]Provider, len(cfgs))

	for _, cfg := range cfgs {
		prov, err := oidc.NewProvider(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider[%s]: %w", cfg.Name, err)
		}

		providers[cfg.Name] = Provider{
			oauth: &oauth2.Config{
				ClientID:     cfg.Client,
				ClientSecret: cfg.Secret,
				RedirectURL:  cfg.RedirectURL,
				Endpoint:     prov.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
			verifier: prov.Verifier(&oidc.Config{ClientID: cfg.Client}),
		}
	}

	return providers, nil
}

func HandleOauthLogin(providers map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := providers[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating state nonce: %w", err)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, prov.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
		return nil
	}
}

// HandleOauthCallback exchanges the code, verifies the ID token, upserts the
// user, and hands back the same JWT auth tokens a password login would.
func HandleOauthCallback(db *sqlx.DB, providers map[string]Provider, cartCfg config.Cart, jwtCfg config.JWT, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := providers[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state, err := r.Cookie(stateCookie)
		if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
			return unauthorized(errors.New("oauth state mismatch"))
		}

		exch, err := prov.oauth.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return unauthorized(fmt.Errorf("exchanging code: %w", err))
		}

		rawID, ok := exch.Extra("id_token").(string)
		if !ok {
			return unauthorized(errors.New("token response carries no id_token"))
		}

		idToken, err := prov.verifier.Verify(ctx, rawID)
		if err != nil {
			return unauthorized(fmt.Errorf("verifying id token: %w", err))
		}

		var profile struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := idToken.Claims(&profile); err != nil {
			return fmt.Errorf("extracting id token claims: %w", err)
		}

		usr, err := user.FetchByEmail(ctx, db, profile.Email)
		if errors.Is(err, user.ErrNotFound) {
			now := time.Now().UTC()
			usr = user.User{
				ID:          validate.GenerateID(),
				Name:        profile.Name,
				Email:       profile.Email,
				WalletMoney: cartCfg.DefaultWalletMoney,
				Address:     cartCfg.DefaultAddress,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := user.Create(ctx, db, usr); err != nil {
				return fmt.Errorf("creating oauth user: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("fetching user by email: %w", err)
		}

		tkns, err := token.GenerateAuthTokens(usr, jwtCfg)
		if err != nil {
			return fmt.Errorf("generating auth tokens: %w", err)
		}

		if redirectURL == "" {
			return web.Respond(ctx, w, authResponse{User: usr, Tokens: tkns}, http.StatusOK)
		}

		q := url.Values{"token": []string{tkns.Access.Token}}
		http.Redirect(w, r, redirectURL+"?"+q.Encode(), http.StatusTemporaryRedirect)
		return nil
	}
}
