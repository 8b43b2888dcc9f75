package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("user not found")

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("selecting user[%s]: %w", id, err)
	}

	return usr, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return usr, nil
}

func Create(ctx context.Context, db sqlx.ExtContext, usr User) error {
	const q = `
	INSERT INTO users (user_id, name, email, password_hash, wallet_money, address, created_at, updated_at)
	VALUES (:user_id, :name, :email, :password_hash, :wallet_money, :address, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, usr); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func UpdateAddress(ctx context.Context, db sqlx.ExtContext, id string, address string) error {
	const q = `UPDATE users SET address = $2, updated_at = now() WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, address); err != nil {
		return fmt.Errorf("updating address of user[%s]: %w", id, err)
	}

	return nil
}

// FetchForUpdate locks the user's row for the rest of the surrounding
// transaction. Checkout relies on this to make the wallet debit race-free.
func FetchForUpdate(ctx context.Context, tx sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1 FOR UPDATE`

	var usr User
	if err := sqlx.GetContext(ctx, tx, &usr, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("locking user by email: %w", err)
	}

	return usr, nil
}

// Debit subtracts amount from the user's wallet. Callers must hold the row
// lock taken by FetchForUpdate.
func Debit(ctx context.Context, tx sqlx.ExtContext, email string, amount int) error {
	const q = `UPDATE users SET wallet_money = wallet_money - $2, updated_at = now() WHERE email = $1`

	if _, err := tx.ExecContext(ctx, q, email, amount); err != nil {
		return fmt.Errorf("debiting wallet of user: %w", err)
	}

	return nil
}
