package product

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ErrInvalid is returned when product fields fail validation.
var ErrInvalid = errors.New("invalid product")

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

func (s *Service) GetAll(ctx context.Context) ([]Product, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// validate checks product fields for validity
func (s *Service) validate(p *Product) error {
	if strings.TrimSpace(p.ProductName) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalid)
	}
	for _, raw := range []string{p.ImageURL, p.Permalink} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: image and permalink must be http(s) URLs", ErrInvalid)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Product) (*Product, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}

	var id int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := s.validate(p); err != nil {
		return err
	}

	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Update(ctx, tx, p)
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}
