package claim

import (
	"context"
	"errors"
	"fmt"
	"log"

	"winsbygroup.com/prodreg/internal/account"
	"winsbygroup.com/prodreg/internal/notify"
	"winsbygroup.com/prodreg/internal/product"
	"winsbygroup.com/prodreg/internal/proof"
	"winsbygroup.com/prodreg/internal/registration"
	"winsbygroup.com/prodreg/internal/sqlite"
)

type Service struct {
	regSvc     *registration.Service
	productSvc *product.Service
	accountSvc *account.Service
	store      proof.Store
	policy     proof.Policy
	notifier   *notify.Notifier
}

func NewService(
	regSvc *registration.Service,
	productSvc *product.Service,
	accountSvc *account.Service,
	store proof.Store,
	policy proof.Policy,
	notifier *notify.Notifier,
) *Service {
	return &Service{
		regSvc:     regSvc,
		productSvc: productSvc,
		accountSvc: accountSvc,
		store:      store,
		policy:     policy,
		notifier:   notifier,
	}
}

// Validate resolves an unclaimed serial number to its catalog product.
func (s *Service) Validate(ctx context.Context, serial string) (*ProductSummary, error) {
	serial = registration.SanitizeSerial(serial)
	if serial == "" {
		return nil, ErrNotFound
	}

	reg, err := s.regSvc.GetBySerial(ctx, serial)
	if errors.Is(err, registration.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reg.Claimed() {
		return nil, ErrAlreadyClaimed
	}

	p, err := s.productSvc.Get(ctx, reg.ProductID)
	if errors.Is(err, product.ErrNotFound) {
		return nil, ErrProductMissing
	}
	if err != nil {
		return nil, err
	}

	return &ProductSummary{
		ID:    p.ProductID,
		Name:  p.ProductName,
		Image: p.ImageURL,
		URL:   p.Permalink,
	}, nil
}

// Register claims an unclaimed serial number for req.UserID. The conditional
// update in the store decides the winner when several callers race; a proof
// upload failure only adds a warning.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Confirmation, error) {
	if req.UserID == registration.Unclaimed {
		return nil, ErrAuthRequired
	}
	serial := registration.SanitizeSerial(req.SerialNumber)

	conf := &Confirmation{Message: SuccessMessage}

	// Proof first, so the claim carries its reference
	if req.Proof != nil {
		ref, err := s.saveProof(ctx, req.Proof)
		if err != nil {
			log.Printf("register %q: proof upload failed: %v", serial, err)
			conf.Warnings = append(conf.Warnings, Message(ErrUploadFailed))
		} else {
			conf.ProofRef = ref
		}
	}

	if err := s.claim(ctx, serial, req.ProductID, req.UserID, conf.ProofRef); err != nil {
		s.discardProof(conf.ProofRef)
		return nil, err
	}

	if err := s.notify(ctx, serial, req.ProductID, req.UserID); err != nil {
		log.Printf("register %q: notification failed: %v", serial, err)
	}

	return conf, nil
}

func (s *Service) claim(ctx context.Context, serial string, productID, userID int64, proofRef string) error {
	if serial == "" {
		return ErrRegistrationFailed
	}

	reg, err := s.regSvc.GetBySerial(ctx, serial)
	if errors.Is(err, registration.ErrNotFound) {
		return ErrRegistrationFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	if reg.Claimed() {
		return ErrAlreadyClaimed
	}

	ok, err := s.regSvc.Claim(ctx, serial, productID, userID, proofRef)
	if err != nil {
		if sqlite.IsBusyError(err) {
			log.Printf("register %q: store busy: %v", serial, err)
		}
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	if !ok {
		return ErrRegistrationFailed
	}
	return nil
}

func (s *Service) saveProof(ctx context.Context, u *proof.Upload) (string, error) {
	if s.store == nil {
		return "", errors.New("no proof storage configured")
	}
	ct, r, err := s.policy.Open(u)
	if err != nil {
		return "", err
	}
	return s.store.Save(ctx, u.Filename, ct, r)
}

// discardProof removes a stored proof whose claim did not go through.
func (s *Service) discardProof(ref string) {
	if ref == "" {
		return
	}
	if err := s.store.Delete(context.Background(), ref); err != nil {
		log.Printf("discard proof %s: %v", ref, err)
	}
}

func (s *Service) notify(ctx context.Context, serial string, productID, userID int64) error {
	if s.notifier == nil {
		return nil
	}

	c := notify.Claim{
		SerialNumber: serial,
		ProductName:  fmt.Sprintf("#%d", productID),
	}
	if p, err := s.productSvc.Get(ctx, productID); err == nil {
		c.ProductName = p.ProductName
	} else {
		log.Printf("notify: product %d: %v", productID, err)
	}
	if a, err := s.accountSvc.Get(ctx, userID); err == nil {
		c.UserLogin = a.UserLogin
		c.UserEmail = a.Email
	} else {
		c.UserLogin = fmt.Sprintf("user %d", userID)
		log.Printf("notify: account %d: %v", userID, err)
	}

	return s.notifier.Notify(ctx, c)
}

// ListForUser returns the caller's registrations, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Owned, error) {
	if userID == registration.Unclaimed {
		return nil, ErrAuthRequired
	}

	entries, err := s.regSvc.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Owned, 0, len(entries))
	for _, e := range entries {
		o := Owned{
			ProductName:      e.ProductName,
			SerialNumber:     e.SerialNumber,
			RegistrationDate: e.RegistrationDate,
		}
		if e.PurchaseProof != "" && s.store != nil {
			o.ProofURL = s.store.URL(e.PurchaseProof)
		}
		out = append(out, o)
	}
	return out, nil
}

// ProofURL resolves a stored reference for display.
func (s *Service) ProofURL(ref string) string {
	if ref == "" || s.store == nil {
		return ""
	}
	return s.store.URL(ref)
}
