package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("cart not found")

func Fetch(ctx context.Context, db sqlx.ExtContext, email string) (Cart, error) {
	const q = `SELECT * FROM carts WHERE email = $1`

	var crt Cart
	if err := sqlx.GetContext(ctx, db, &crt, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("selecting cart: %w", err)
	}

	return crt, nil
}

// FetchForUpdate locks the cart row for the rest of the surrounding
// transaction, serializing concurrent mutations of the same user's cart.
func FetchForUpdate(ctx context.Context, tx sqlx.ExtContext, email string) (Cart, error) {
	const q = `SELECT * FROM carts WHERE email = $1 FOR UPDATE`

	var crt Cart
	if err := sqlx.GetContext(ctx, tx, &crt, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("locking cart: %w", err)
	}

	return crt, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, email string) ([]Item, error) {
	const q = `SELECT * FROM cart_items WHERE email = $1 ORDER BY added_at`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, email); err != nil {
		return nil, fmt.Errorf("selecting cart items: %w", err)
	}

	return items, nil
}

func Insert(ctx context.Context, db sqlx.ExtContext, crt Cart) error {
	const q = `
	INSERT INTO carts (email, payment_option, version, created_at, updated_at)
	VALUES (:email, :payment_option, :version, :created_at, :updated_at)
	ON CONFLICT (email) DO NOTHING`

	if _, err := sqlx.NamedExecContext(ctx, db, q, crt); err != nil {
		return fmt.Errorf("inserting cart: %w", err)
	}

	return nil
}

func InsertItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO cart_items (email, product_id, name, category, cost, image, quantity, added_at)
	VALUES (:email, :product_id, :name, :category, :cost, :image, :quantity, :added_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("inserting cart item: %w", err)
	}

	return nil
}

func UpdateItemQuantity(ctx context.Context, db sqlx.ExtContext, email string, productID string, quantity int) error {
	const q = `UPDATE cart_items SET quantity = $3 WHERE email = $1 AND product_id = $2`

	if _, err := db.ExecContext(ctx, q, email, productID, quantity); err != nil {
		return fmt.Errorf("updating quantity of item[%s]: %w", productID, err)
	}

	return nil
}

func DeleteItem(ctx context.Context, db sqlx.ExtContext, email string, productID string) error {
	const q = `DELETE FROM cart_items WHERE email = $1 AND product_id = $2`

	if _, err := db.ExecContext(ctx, q, email, productID); err != nil {
		return fmt.Errorf("deleting item[%s]: %w", productID, err)
	}

	return nil
}

// Flush removes every item while keeping the cart document itself.
func Flush(ctx context.Context, db sqlx.ExtContext, email string) error {
	const q = `DELETE FROM cart_items WHERE email = $1`

	if _, err := db.ExecContext(ctx, q, email); err != nil {
		return fmt.Errorf("flushing cart: %w", err)
	}

	return nil
}

// BumpVersion records a committed mutation on the cart document.
func BumpVersion(ctx context.Context, db sqlx.ExtContext, email string) error {
	const q = `UPDATE carts SET version = version + 1, updated_at = now() WHERE email = $1`

	if _, err := db.ExecContext(ctx, q, email); err != nil {
		return fmt.Errorf("bumping cart version: %w", err)
	}

	return nil
}
