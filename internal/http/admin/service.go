package admin

import (
	"context"
	"io"

	"winsbygroup.com/prodreg/internal/account"
	"winsbygroup.com/prodreg/internal/backup"
	"winsbygroup.com/prodreg/internal/claim"
	"winsbygroup.com/prodreg/internal/dispatch"
	"winsbygroup.com/prodreg/internal/importer"
	"winsbygroup.com/prodreg/internal/maintenance"
	"winsbygroup.com/prodreg/internal/product"
	"winsbygroup.com/prodreg/internal/registration"
)

// Service backs the admin JSON API. Registration operations go through the
// dispatcher so the API obeys the same gates as the web pages.
type Service struct {
	dispatcher *dispatch.Dispatcher
	claims     *claim.Service
	products   *product.Service
	accounts   *account.Service
	backups    *backup.Service
}

func NewService(d *dispatch.Dispatcher, claims *claim.Service, maint *maintenance.Service, backups *backup.Service) *Service {
	return &Service{
		dispatcher: d,
		claims:     claims,
		products:   maint.Products(),
		accounts:   maint.Accounts(),
		backups:    backups,
	}
}

// -------------------------
// Registrations
// -------------------------

func (s *Service) GetRegistrations(ctx context.Context, c dispatch.Caller) ([]RegistrationResponse, error) {
	out, err := s.dispatcher.Dispatch(ctx, c, dispatch.ListRegistrations{})
	if err != nil {
		return nil, err
	}

	entries := out.([]registration.Entry)
	resp := make([]RegistrationResponse, len(entries))
	for i := range entries {
		resp[i] = s.toResponse(&entries[i])
	}
	return resp, nil
}

func (s *Service) GetRegistration(ctx context.Context, c dispatch.Caller, id int64) (*RegistrationResponse, error) {
	out, err := s.dispatcher.Dispatch(ctx, c, dispatch.GetRegistration{ID: id})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(out.(*registration.Entry))
	return &resp, nil
}

func (s *Service) UpdateRegistration(ctx context.Context, c dispatch.Caller, id int64, req *UpdateRegistrationRequest) (*RegistrationResponse, error) {
	out, err := s.dispatcher.Dispatch(ctx, c, dispatch.EditRegistration{
		ID:           id,
		SerialNumber: req.SerialNumber,
		ProductID:    req.ProductID,
	})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(out.(*registration.Entry))
	return &resp, nil
}

func (s *Service) DeleteRegistration(ctx context.Context, c dispatch.Caller, id int64) error {
	_, err := s.dispatcher.Dispatch(ctx, c, dispatch.DeleteRegistration{ID: id})
	return err
}

func (s *Service) ImportSerials(ctx context.Context, c dispatch.Caller, filename string, r io.Reader) (*importer.Result, error) {
	out, err := s.dispatcher.Dispatch(ctx, c, dispatch.ImportSerials{Filename: filename, Body: r})
	if err != nil {
		return nil, err
	}
	return out.(*importer.Result), nil
}

func (s *Service) toResponse(e *registration.Entry) RegistrationResponse {
	return RegistrationResponse{
		RegistrationID:   e.RegistrationID,
		SerialNumber:     e.SerialNumber,
		ProductID:        e.ProductID,
		ProductName:      e.ProductName,
		UserID:           e.UserID,
		UserLogin:        e.UserLogin,
		RegistrationDate: e.RegistrationDate,
		ProofURL:         s.claims.ProofURL(e.PurchaseProof),
	}
}

// -------------------------
// Products
// -------------------------

func (s *Service) GetProducts(ctx context.Context) ([]product.Product, error) {
	return s.products.GetAll(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*product.Product, error) {
	p := &product.Product{
		ProductID:   req.ProductID,
		ProductName: req.Name,
		ImageURL:    req.ImageURL,
		Permalink:   req.Permalink,
	}
	return s.products.Create(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req *UpdateProductRequest) error {
	p := &product.Product{
		ProductID:   id,
		ProductName: req.Name,
		ImageURL:    req.ImageURL,
		Permalink:   req.Permalink,
	}
	return s.products.Update(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}

// -------------------------
// Accounts
// -------------------------

func (s *Service) GetAccounts(ctx context.Context) ([]account.Account, error) {
	return s.accounts.GetAll(ctx)
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.accounts.Get(ctx, id)
}

func (s *Service) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*account.Account, error) {
	a := &account.Account{
		UserID:      req.UserID,
		UserLogin:   req.UserLogin,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	return s.accounts.Create(ctx, a)
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, req *UpdateAccountRequest) error {
	a := &account.Account{
		UserID:      id,
		UserLogin:   req.UserLogin,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	return s.accounts.Update(ctx, a)
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	return s.accounts.Delete(ctx, id)
}

// -------------------------
// Backups
// -------------------------

func (s *Service) CreateBackup(ctx context.Context) (*backup.Result, error) {
	return s.backups.Create(ctx)
}

func (s *Service) GetBackups() ([]backup.Result, error) {
	return s.backups.List()
}
