package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no account has the requested user id.
var ErrNotFound = errors.New("account not found")

type Repository interface {
	GetAll(ctx context.Context) ([]Account, error)
	Get(ctx context.Context, id int64) (*Account, error)
	Create(ctx context.Context, tx *sqlx.Tx, a *Account) error
	Update(ctx context.Context, tx *sqlx.Tx, a *Account) error
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetAll(ctx context.Context) ([]Account, error) {
	var out []Account
	err := r.db.SelectContext(ctx, &out, getAllAccountsSQL)
	if err != nil {
		return nil, fmt.Errorf("get all accounts: %w", err)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, getAccountSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, a *Account) error {
	_, err := tx.ExecContext(ctx, createAccountSQL,
		a.UserID,
		a.UserLogin,
		a.Email,
		a.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, a *Account) error {
	res, err := tx.ExecContext(ctx, updateAccountSQL,
		a.UserLogin,
		a.Email,
		a.DisplayName,
		a.UserID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w (%d)", ErrNotFound, a.UserID)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, deleteAccountSQL, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
