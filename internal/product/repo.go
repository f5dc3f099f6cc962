package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

type Repository interface {
	GetAll(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, tx *sqlx.Tx, p *Product) (int64, error)
	Update(ctx context.Context, tx *sqlx.Tx, p *Product) error
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetAll(ctx context.Context) ([]Product, error) {
	var out []Product
	err := r.db.SelectContext(ctx, &out, getAllProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("get all products: %w", err)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, getProductSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, p *Product) (int64, error) {
	res, err := tx.ExecContext(ctx, createProductSQL,
		p.ProductID,
		p.ProductName,
		p.ImageURL,
		p.Permalink,
	)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return res.LastInsertId()
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, p *Product) error {
	res, err := tx.ExecContext(ctx, updateProductSQL,
		p.ProductName,
		p.ImageURL,
		p.Permalink,
		p.ProductID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w (%d)", ErrNotFound, p.ProductID)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w (%d)", ErrNotFound, id)
	}
	return nil
}
