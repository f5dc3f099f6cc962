package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"winsbygroup.com/prodreg/internal/account"
	"winsbygroup.com/prodreg/internal/importer"
	"winsbygroup.com/prodreg/internal/product"
	"winsbygroup.com/prodreg/internal/registration"
	"winsbygroup.com/prodreg/internal/sqlite"
)

var (
	ErrConflict     = errors.New("serial number already exists")
	ErrInvalidInput = errors.New("invalid input")
)

// Service is the operator side of the registration table plus the catalog
// and account records it refers to.
type Service struct {
	regSvc     *registration.Service
	importSvc  *importer.Service
	productSvc *product.Service
	accountSvc *account.Service
}

func NewService(
	regSvc *registration.Service,
	importSvc *importer.Service,
	productSvc *product.Service,
	accountSvc *account.Service,
) *Service {
	return &Service{
		regSvc:     regSvc,
		importSvc:  importSvc,
		productSvc: productSvc,
		accountSvc: accountSvc,
	}
}

// List returns all rows, newest registration date first.
func (s *Service) List(ctx context.Context) ([]registration.Entry, error) {
	entries, err := s.regSvc.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []registration.Entry{}
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*registration.Entry, error) {
	return s.regSvc.GetEntry(ctx, id)
}

// Edit overwrites serial number and product id. Owner, date and proof are
// kept.
func (s *Service) Edit(ctx context.Context, id int64, serial string, productID int64) error {
	serial = registration.SanitizeSerial(serial)
	if serial == "" {
		return fmt.Errorf("%w: serial number is required", ErrInvalidInput)
	}
	if productID <= 0 {
		return fmt.Errorf("%w: product id must be positive", ErrInvalidInput)
	}

	err := s.regSvc.Update(ctx, id, serial, productID)
	if sqlite.IsUniqueConstraintError(err) {
		return fmt.Errorf("%w: %s", ErrConflict, serial)
	}
	if err != nil {
		return err
	}

	log.Printf("registration %d edited: serial=%q product=%d", id, serial, productID)
	return nil
}

// Delete removes a row whatever its state. A stored proof stays in storage.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.regSvc.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("registration %d deleted", id)
	return nil
}

func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (*importer.Result, error) {
	return s.importSvc.Import(ctx, filename, r)
}

func (s *Service) Products() *product.Service {
	return s.productSvc
}

func (s *Service) Accounts() *account.Service {
	return s.accountSvc
}
