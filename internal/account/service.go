package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ErrInvalid is returned when account fields fail validation.
var ErrInvalid = errors.New("invalid account")

type Service struct {
	repo Repository
	db   *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:   db,
		repo: New(db),
	}
}

func (s *Service) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Service) GetAll(ctx context.Context) ([]Account, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) validate(a *Account) error {
	if a.UserID <= 0 {
		return fmt.Errorf("%w: user id must be positive", ErrInvalid)
	}
	if strings.TrimSpace(a.UserLogin) == "" {
		return fmt.Errorf("%w: user login is required", ErrInvalid)
	}
	if a.Email != "" {
		if _, err := mail.ParseAddress(a.Email); err != nil {
			return fmt.Errorf("%w: email address is invalid", ErrInvalid)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, a *Account) (*Account, error) {
	if err := s.validate(a); err != nil {
		return nil, err
	}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Create(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, a.UserID)
}

func (s *Service) Update(ctx context.Context, a *Account) error {
	if err := s.validate(a); err != nil {
		return err
	}

	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Update(ctx, tx, a)
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}
