package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/qkart/backend/api/weberr"
	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/product"
	"github.com/qkart/backend/core/user"
	"github.com/qkart/backend/database"
)

// Every mutating operation below runs inside a single database transaction
// and takes a row lock on the user's cart, so concurrent requests against
// the same cart serialize instead of losing updates. Operations on different
// users' carts never contend.

// GetCartByUser fetches the cart owned by the user.
func GetCartByUser(ctx context.Context, db *sqlx.DB, usr user.User) (Cart, error) {
	crt, err := Fetch(ctx, db, usr.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Cart{}, weberr.NewError(err, "User does not have a cart", http.StatusNotFound)
		}
		return Cart{}, fmt.Errorf("fetching cart of user[%s]: %w", usr.Email, err)
	}

	if crt.Items, err = FetchItems(ctx, db, usr.Email); err != nil {
		return Cart{}, fmt.Errorf("fetching items of cart[%s]: %w", usr.Email, err)
	}

	return crt, nil
}

// createNewCart makes an empty cart with the configured default payment
// option. Inserting is idempotent, so two racing first adds converge on the
// same cart row.
func createNewCart(ctx context.Context, tx sqlx.ExtContext, cfg config.Cart, usr user.User) (Cart, error) {
	now := time.Now().UTC()
	crt := Cart{
		Email:         usr.Email,
		PaymentOption: cfg.DefaultPaymentOption,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := Insert(ctx, tx, crt); err != nil {
		return Cart{}, weberr.InternalError(fmt.Errorf("creating cart for user[%s]: %w", usr.Email, err))
	}

	return crt, nil
}

// AddProductToCart appends a line item holding a snapshot of the product,
// lazily creating the cart on the user's first add.
func AddProductToCart(ctx context.Context, db *sqlx.DB, cfg config.Cart, usr user.User, productID string, quantity int) (Cart, error) {
	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		prd, err := product.Fetch(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return weberr.NewError(err, "Product doesn't exist in database", http.StatusBadRequest)
			}
			return fmt.Errorf("fetching product[%s]: %w", productID, err)
		}

		if _, err := FetchForUpdate(ctx, tx, usr.Email); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("locking cart of user[%s]: %w", usr.Email, err)
			}

			if _, err := createNewCart(ctx, tx, cfg, usr); err != nil {
				return err
			}
			if _, err := FetchForUpdate(ctx, tx, usr.Email); err != nil {
				return fmt.Errorf("locking fresh cart of user[%s]: %w", usr.Email, err)
			}
		}

		items, err := FetchItems(ctx, tx, usr.Email)
		if err != nil {
			return fmt.Errorf("fetching items of cart[%s]: %w", usr.Email, err)
		}

		if _, ok := findItem(items, productID); ok {
			err := errors.New("product already in cart")
			return weberr.NewError(err, "Product already in cart. Use the cart sidebar to update or remove product from cart", http.StatusBadRequest)
		}

		it := Item{
			Snapshot: NewSnapshot(prd),
			Email:    usr.Email,
			Quantity: quantity,
			AddedAt:  time.Now().UTC(),
		}

		if err := InsertItem(ctx, tx, it); err != nil {
			return fmt.Errorf("adding item[%s] to cart[%s]: %w", productID, usr.Email, err)
		}

		return BumpVersion(ctx, tx, usr.Email)
	})
	if err != nil {
		return Cart{}, err
	}

	return GetCartByUser(ctx, db, usr)
}

// UpdateProductInCart sets the quantity of an item already in the cart.
// Updating requires a prior add: it never creates the cart.
func UpdateProductInCart(ctx context.Context, db *sqlx.DB, usr user.User, productID string, quantity int) (Cart, error) {
	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		if _, err := FetchForUpdate(ctx, tx, usr.Email); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NewError(err, "User does not have a cart. Use POST to create cart and add a product", http.StatusBadRequest)
			}
			return fmt.Errorf("locking cart of user[%s]: %w", usr.Email, err)
		}

		if _, err := product.Fetch(ctx, tx, productID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return weberr.NewError(err, "Product doesn't exist in database", http.StatusBadRequest)
			}
			return fmt.Errorf("fetching product[%s]: %w", productID, err)
		}

		items, err := FetchItems(ctx, tx, usr.Email)
		if err != nil {
			return fmt.Errorf("fetching items of cart[%s]: %w", usr.Email, err)
		}

		if _, ok := findItem(items, productID); !ok {
			err := errors.New("product not in cart")
			return weberr.NewError(err, "Product not in cart", http.StatusBadRequest)
		}

		if err := UpdateItemQuantity(ctx, tx, usr.Email, productID, quantity); err != nil {
			return fmt.Errorf("updating item[%s] in cart[%s]: %w", productID, usr.Email, err)
		}

		return BumpVersion(ctx, tx, usr.Email)
	})
	if err != nil {
		return Cart{}, err
	}

	return GetCartByUser(ctx, db, usr)
}

// DeleteProductFromCart removes an item from the cart.
func DeleteProductFromCart(ctx context.Context, db *sqlx.DB, usr user.User, productID string) error {
	return database.Transaction(db, func(tx sqlx.ExtContext) error {
		if _, err := FetchForUpdate(ctx, tx, usr.Email); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NewError(err, "User does not have a cart", http.StatusBadRequest)
			}
			return fmt.Errorf("locking cart of user[%s]: %w", usr.Email, err)
		}

		items, err := FetchItems(ctx, tx, usr.Email)
		if err != nil {
			return fmt.Errorf("fetching items of cart[%s]: %w", usr.Email, err)
		}

		if _, ok := findItem(items, productID); !ok {
			err := errors.New("product not in cart")
			return weberr.NewError(err, "product not in cart", http.StatusBadRequest)
		}

		if err := DeleteItem(ctx, tx, usr.Email, productID); err != nil {
			return fmt.Errorf("deleting item[%s] from cart[%s]: %w", productID, usr.Email, err)
		}

		return BumpVersion(ctx, tx, usr.Email)
	})
}

// Checkout converts the cart's contents into a wallet debit and empties the
// cart. The debit and the flush commit in the same transaction: a failure in
// either rolls back both, so the user is never charged for a cart that kept
// its items, nor cleared without being charged. Both the cart row and the
// user row are locked, so a second concurrent checkout waits and then fails
// on the empty cart rather than debiting twice.
func Checkout(ctx context.Context, db *sqlx.DB, cfg config.Cart, usr user.User) error {
	return database.Transaction(db, func(tx sqlx.ExtContext) error {
		if _, err := FetchForUpdate(ctx, tx, usr.Email); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NewError(err, "User does not have a cart", http.StatusNotFound)
			}
			return fmt.Errorf("locking cart of user[%s]: %w", usr.Email, err)
		}

		items, err := FetchItems(ctx, tx, usr.Email)
		if err != nil {
			return fmt.Errorf("fetching items of cart[%s]: %w", usr.Email, err)
		}

		if len(items) == 0 {
			err := errors.New("cart has no items")
			return weberr.NewError(err, "empty Cart", http.StatusBadRequest)
		}

		// The wallet and address are re-read under lock rather than trusted
		// from the request-scoped user, so the debit applies to the current
		// balance.
		current, err := user.FetchForUpdate(ctx, tx, usr.Email)
		if err != nil {
			return fmt.Errorf("locking user[%s]: %w", usr.Email, err)
		}

		if !current.HasSetAddress(cfg.DefaultAddress) {
			err := errors.New("delivery address is not set")
			return weberr.NewError(err, "address not set", http.StatusBadRequest)
		}

		totalCost := TotalCost(items)
		if totalCost > current.WalletMoney {
			err := errors.New("total cost exceeds wallet balance")
			return weberr.NewError(err, "wallet balance is insufficient", http.StatusBadRequest)
		}

		if err := user.Debit(ctx, tx, usr.Email, totalCost); err != nil {
			return fmt.Errorf("debiting wallet of user[%s]: %w", usr.Email, err)
		}

		if err := Flush(ctx, tx, usr.Email); err != nil {
			return fmt.Errorf("flushing cart of user[%s]: %w", usr.Email, err)
		}

		return BumpVersion(ctx, tx, usr.Email)
	})
}
