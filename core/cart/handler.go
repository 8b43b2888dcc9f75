package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/qkart/backend/api/web"
	"github.com/qkart/backend/api/weberr"
	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/claims"
	"github.com/qkart/backend/core/user"
	"github.com/qkart/backend/validate"
)

func currentUser(ctx context.Context, db *sqlx.DB) (user.User, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return user.User{}, weberr.NotAuthorized(err)
	}

	usr, err := user.Fetch(ctx, db, clm.UserID)
	if err != nil {
		return user.User{}, fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
	}

	return usr, nil
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		usr, err := currentUser(ctx, db)
		if err != nil {
			return err
		}

		crt, err := GetCartByUser(ctx, db, usr)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleAddItem(db *sqlx.DB, cfg config.Cart) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		usr, err := currentUser(ctx, db)
		if err != nil {
			return err
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if in.Quantity < 1 {
			err := errors.New("quantity below one")
			return weberr.NewError(err, "quantity must be at least 1", http.StatusBadRequest)
		}

		crt, err := AddProductToCart(ctx, db, cfg, usr, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, crt, http.StatusCreated)
	}
}

// HandleUpdateItem sets an item's quantity. A quantity of zero removes the
// item instead, mirroring what the storefront sends when the last unit is
// taken out of the cart.
func HandleUpdateItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		usr, err := currentUser(ctx, db)
		if err != nil {
			return err
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if in.Quantity == 0 {
			if err := DeleteProductFromCart(ctx, db, usr, in.ProductID); err != nil {
				return err
			}
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		crt, err := UpdateProductInCart(ctx, db, usr, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleDeleteItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		usr, err := currentUser(ctx, db)
		if err != nil {
			return err
		}

		productID := web.Param(r, "product_id")

		if err := DeleteProductFromCart(ctx, db, usr, productID); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleCheckout(db *sqlx.DB, cfg config.Cart) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		usr, err := currentUser(ctx, db)
		if err != nil {
			return err
		}

		if err := Checkout(ctx, db, cfg, usr); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
