package registration

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Service struct {
	repo Repository
	db   *sqlx.DB
	now  func() time.Time
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:   db,
		repo: New(db),
		now:  time.Now,
	}
}

// SetClock replaces the time source used for registration dates.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the current time in the stored date format.
func (s *Service) Now() string {
	return s.now().UTC().Format(DateLayout)
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

func (s *Service) Get(ctx context.Context, id int64) (*Registration, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetBySerial(ctx context.Context, serial string) (*Registration, error) {
	return s.repo.GetBySerial(ctx, serial)
}

func (s *Service) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// GetAll returns every row, newest registration date first.
func (s *Service) GetAll(ctx context.Context) ([]Entry, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) GetForUser(ctx context.Context, userID int64) ([]Entry, error) {
	return s.repo.GetForUser(ctx, userID)
}

// Create inserts one unclaimed row dated now.
func (s *Service) Create(ctx context.Context, serial string, productID int64) (*Registration, error) {
	var id int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = s.repo.Create(ctx, tx, serial, productID, s.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// CreateTx inserts an unclaimed row inside the caller's transaction. A
// failing insert aborts only its own statement, so bulk loads can continue.
func (s *Service) CreateTx(ctx context.Context, tx *sqlx.Tx, serial string, productID int64, date string) error {
	_, err := s.repo.Create(ctx, tx, serial, productID, date)
	return err
}

// Claim sets the owner, date and proof of the unclaimed row matching serial
// and productID. It returns false when no row matched.
func (s *Service) Claim(ctx context.Context, serial string, productID, userID int64, proofRef string) (bool, error) {
	n, err := s.repo.Claim(ctx, &ClaimArgs{
		SerialNumber:  serial,
		ProductID:     productID,
		UserID:        userID,
		Date:          s.Now(),
		PurchaseProof: proofRef,
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Update overwrites serial number and product of a row. Claim state is left
// as it is.
func (s *Service) Update(ctx context.Context, id int64, serial string, productID int64) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Update(ctx, tx, id, serial, productID)
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, id)
	})
}
