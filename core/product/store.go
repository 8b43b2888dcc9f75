package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("product not found")

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1`

	var prd Product
	if err := sqlx.GetContext(ctx, db, &prd, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("selecting product[%s]: %w", id, err)
	}

	return prd, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Product, error) {
	const q = `SELECT * FROM products ORDER BY name`

	prds := []Product{}
	if err := sqlx.SelectContext(ctx, db, &prds, q); err != nil {
		return nil, fmt.Errorf("selecting products: %w", err)
	}

	return prds, nil
}

func Search(ctx context.Context, db sqlx.ExtContext, value string) ([]Product, error) {
	const q = `
	SELECT * FROM products
	WHERE name ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%'
	ORDER BY name`

	prds := []Product{}
	if err := sqlx.SelectContext(ctx, db, &prds, q, value); err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}

	return prds, nil
}
