package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no row matches the id or serial number.
var ErrNotFound = errors.New("registration not found")

type Repository interface {
	Get(ctx context.Context, id int64) (*Registration, error)
	GetBySerial(ctx context.Context, serial string) (*Registration, error)
	GetEntry(ctx context.Context, id int64) (*Entry, error)
	GetAll(ctx context.Context) ([]Entry, error)
	GetForUser(ctx context.Context, userID int64) ([]Entry, error)
	Create(ctx context.Context, tx *sqlx.Tx, serial string, productID int64, date string) (int64, error)
	Claim(ctx context.Context, c *ClaimArgs) (int64, error)
	Update(ctx context.Context, tx *sqlx.Tx, id int64, serial string, productID int64) error
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
}

// ClaimArgs are the values written by a claim and the (serial, product)
// pair it is scoped to.
type ClaimArgs struct {
	SerialNumber  string
	ProductID     int64
	UserID        int64
	Date          string
	PurchaseProof string
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id int64) (*Registration, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg, getRegistrationSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

func (r *repo) GetBySerial(ctx context.Context, serial string) (*Registration, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg, getRegistrationBySerialSQL, serial)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%s)", ErrNotFound, serial)
	}
	if err != nil {
		return nil, fmt.Errorf("get registration by serial: %w", err)
	}
	return &reg, nil
}

func (r *repo) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	var e Entry
	err := r.db.GetContext(ctx, &e, getEntrySQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%d)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get registration entry: %w", err)
	}
	return &e, nil
}

func (r *repo) GetAll(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := r.db.SelectContext(ctx, &out, getAllEntriesSQL)
	if err != nil {
		return nil, fmt.Errorf("get all registrations: %w", err)
	}
	return out, nil
}

func (r *repo) GetForUser(ctx context.Context, userID int64) ([]Entry, error) {
	var out []Entry
	err := r.db.SelectContext(ctx, &out, getEntriesForUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("get registrations for user: %w", err)
	}
	return out, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, serial string, productID int64, date string) (int64, error) {
	res, err := tx.ExecContext(ctx, createRegistrationSQL, productID, serial, date)
	if err != nil {
		return 0, fmt.Errorf("create registration: %w", err)
	}
	return res.LastInsertId()
}

// Claim runs the conditional update outside any transaction and returns the
// number of rows it changed.
func (r *repo) Claim(ctx context.Context, c *ClaimArgs) (int64, error) {
	res, err := r.db.ExecContext(ctx, claimRegistrationSQL,
		c.UserID,
		c.Date,
		c.PurchaseProof,
		c.SerialNumber,
		c.ProductID,
	)
	if err != nil {
		return 0, fmt.Errorf("claim registration: %w", err)
	}
	return res.RowsAffected()
}

func (r *repo) Update(ctx context.Context, tx *sqlx.Tx, id int64, serial string, productID int64) error {
	res, err := tx.ExecContext(ctx, updateRegistrationSQL, serial, productID, id)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w (%d)", ErrNotFound, id)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, deleteRegistrationSQL, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w (%d)", ErrNotFound, id)
	}
	return nil
}
