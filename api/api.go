package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/qkart/backend/api/middleware"
	"github.com/qkart/backend/api/web"
	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/auth"
	"github.com/qkart/backend/core/cart"
	"github.com/qkart/backend/core/product"
	"github.com/qkart/backend/core/user"
	"github.com/qkart/backend/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	JWT              config.JWT
	Cart             config.Cart
	LoginLimiter     *rate.Limiter
	Providers        map[string]auth.Provider
	LoginRedirectURL string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.DB, cfg.JWT)

	a.Handle(http.MethodPost, "/v1/auth/register", auth.HandleRegister(cfg.DB, cfg.Cart, cfg.JWT))
	a.Handle(http.MethodPost, "/v1/auth/login", auth.HandleLogin(cfg.DB, cfg.JWT, cfg.LoginLimiter))
	a.Handle(http.MethodGet, "/v1/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Providers))
	a.Handle(http.MethodGet, "/v1/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Providers, cfg.Cart, cfg.JWT, cfg.LoginRedirectURL))

	a.Handle(http.MethodGet, "/v1/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodGet, "/v1/users/{id}", user.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPut, "/v1/users/{id}", user.HandleUpdateAddress(cfg.DB), authen)

	a.Handle(http.MethodGet, "/v1/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodGet, "/v1/products/{id}", product.HandleShow(cfg.DB))

	a.Handle(http.MethodGet, "/v1/cart", cart.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPost, "/v1/cart", cart.HandleAddItem(cfg.DB, cfg.Cart), authen)
	a.Handle(http.MethodPut, "/v1/cart/checkout", cart.HandleCheckout(cfg.DB, cfg.Cart), authen)
	a.Handle(http.MethodPut, "/v1/cart", cart.HandleUpdateItem(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/v1/cart/{product_id}", cart.HandleDeleteItem(cfg.DB), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
