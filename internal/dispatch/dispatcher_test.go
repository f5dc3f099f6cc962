package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/prodreg/internal/account"
	"winsbygroup.com/prodreg/internal/claim"
	"winsbygroup.com/prodreg/internal/dispatch"
	"winsbygroup.com/prodreg/internal/importer"
	"winsbygroup.com/prodreg/internal/maintenance"
	"winsbygroup.com/prodreg/internal/notify"
	"winsbygroup.com/prodreg/internal/product"
	"winsbygroup.com/prodreg/internal/proof"
	"winsbygroup.com/prodreg/internal/registration"
	"winsbygroup.com/prodreg/internal/testutil"
)

var (
	operator = dispatch.Caller{Operator: true, TokenVerified: true}
	customer = dispatch.Caller{UserID: 99, TokenVerified: true}
)

func newDispatcher(t *testing.T) (*dispatch.Dispatcher, *registration.Service) {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	regSvc := registration.NewService(db)
	productSvc := product.NewService(db)
	accountSvc := account.NewService(db)

	for _, p := range []product.Product{
		{ProductID: 7, ProductName: "Kettle"},
		{ProductID: 42, ProductName: "Toaster"},
	} {
		if _, err := productSvc.Create(ctx, &p); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}
	if _, err := accountSvc.Create(ctx, &account.Account{UserID: 99, UserLogin: "jdoe"}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	store, err := proof.NewDiskStore(t.TempDir(), "/proofs")
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}

	claimSvc := claim.NewService(regSvc, productSvc, accountSvc, store, proof.Policy{MaxBytes: 1 << 20},
		notify.NewNotifier(notify.LogMailer{}, ""))
	maintSvc := maintenance.NewService(regSvc, importer.NewService(regSvc), productSvc, accountSvc)

	return dispatch.New(claimSvc, maintSvc), regSvc
}

func TestGating(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  dispatch.Caller
		req     dispatch.Request
		wantErr error
	}{
		{"validate without token", dispatch.Caller{UserID: 99}, dispatch.ValidateSerial{SerialNumber: "X"}, dispatch.ErrInvalidToken},
		{"validate anonymous with token", dispatch.Caller{TokenVerified: true}, dispatch.ValidateSerial{SerialNumber: "X"}, claim.ErrNotFound},
		{"register without token", dispatch.Caller{UserID: 99}, dispatch.RegisterProduct{SerialNumber: "X", ProductID: 7}, dispatch.ErrInvalidToken},
		{"register anonymous", dispatch.Caller{TokenVerified: true}, dispatch.RegisterProduct{SerialNumber: "X", ProductID: 7}, claim.ErrAuthRequired},
		{"list mine anonymous", dispatch.Caller{TokenVerified: true}, dispatch.ListMyRegistrations{}, claim.ErrAuthRequired},
		{"list all as customer", customer, dispatch.ListRegistrations{}, dispatch.ErrPermissionDenied},
		{"get as customer", customer, dispatch.GetRegistration{ID: 1}, dispatch.ErrPermissionDenied},
		{"edit as customer", customer, dispatch.EditRegistration{ID: 1, SerialNumber: "Y", ProductID: 7}, dispatch.ErrPermissionDenied},
		{"edit as operator without token", dispatch.Caller{Operator: true}, dispatch.EditRegistration{ID: 1, SerialNumber: "Y", ProductID: 7}, dispatch.ErrInvalidToken},
		{"delete as customer", customer, dispatch.DeleteRegistration{ID: 1}, dispatch.ErrPermissionDenied},
		{"delete as operator without token", dispatch.Caller{Operator: true}, dispatch.DeleteRegistration{ID: 1}, dispatch.ErrInvalidToken},
		{"import as customer", customer, dispatch.ImportSerials{Filename: "a.csv", Body: strings.NewReader("Z,7")}, dispatch.ErrPermissionDenied},
		{"import as operator without token", dispatch.Caller{Operator: true}, dispatch.ImportSerials{Filename: "a.csv", Body: strings.NewReader("Z,7")}, dispatch.ErrInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, regSvc := newDispatcher(t)
			if _, err := regSvc.Create(ctx, "GATED", 7); err != nil {
				t.Fatalf("seed: %v", err)
			}

			_, err := d.Dispatch(ctx, tc.caller, tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			// a rejected request has no effect
			all, _ := regSvc.GetAll(ctx)
			if len(all) != 1 || all[0].SerialNumber != "GATED" || all[0].Claimed() {
				t.Errorf("store changed: %+v", all)
			}
		})
	}

	t.Run("operator reads without token", func(t *testing.T) {
		d, _ := newDispatcher(t)
		if _, err := d.Dispatch(ctx, dispatch.Caller{Operator: true}, dispatch.ListRegistrations{}); err != nil {
			t.Errorf("list: %v", err)
		}
	})

	t.Run("nil request", func(t *testing.T) {
		d, _ := newDispatcher(t)
		if _, err := d.Dispatch(ctx, operator, nil); !errors.Is(err, dispatch.ErrUnknownRequest) {
			t.Errorf("expected ErrUnknownRequest, got %v", err)
		}
	})
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	d, regSvc := newDispatcher(t)

	out, err := d.Dispatch(ctx, operator, dispatch.ImportSerials{
		Filename: "serials.csv",
		Body:     strings.NewReader("ABC123,7\nSN-100,42\n"),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res := out.(*importer.Result); res.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", res.Imported)
	}

	t.Run("imported serial validates to its product", func(t *testing.T) {
		out, err := d.Dispatch(ctx, customer, dispatch.ValidateSerial{SerialNumber: "SN-100"})
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if p := out.(*claim.ProductSummary); p.ID != 42 {
			t.Errorf("expected product 42, got %d", p.ID)
		}
		reg, _ := regSvc.GetBySerial(ctx, "SN-100")
		if reg.UserID != 0 {
			t.Errorf("expected unclaimed row, owner %d", reg.UserID)
		}
	})

	if _, err := d.Dispatch(ctx, customer, dispatch.ValidateSerial{SerialNumber: "ABC123"}); err != nil {
		t.Fatalf("validate ABC123: %v", err)
	}

	out, err = d.Dispatch(ctx, customer, dispatch.RegisterProduct{SerialNumber: "ABC123", ProductID: 7})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if conf := out.(*claim.Confirmation); conf.Message != claim.SuccessMessage {
		t.Errorf("unexpected confirmation %q", conf.Message)
	}

	if _, err := d.Dispatch(ctx, customer, dispatch.ValidateSerial{SerialNumber: "ABC123"}); !errors.Is(err, claim.ErrAlreadyClaimed) {
		t.Errorf("validate after claim: expected ErrAlreadyClaimed, got %v", err)
	}
	other := dispatch.Caller{UserID: 100, TokenVerified: true}
	if _, err := d.Dispatch(ctx, other, dispatch.RegisterProduct{SerialNumber: "ABC123", ProductID: 7}); !errors.Is(err, claim.ErrAlreadyClaimed) {
		t.Errorf("register after claim: expected ErrAlreadyClaimed, got %v", err)
	}

	out, err = d.Dispatch(ctx, customer, dispatch.ListMyRegistrations{})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if mine := out.([]claim.Owned); len(mine) != 1 || mine[0].SerialNumber != "ABC123" {
		t.Errorf("unexpected own registrations %+v", mine)
	}

	reg, _ := regSvc.GetBySerial(ctx, "ABC123")

	out, err = d.Dispatch(ctx, operator, dispatch.EditRegistration{ID: reg.RegistrationID, SerialNumber: "ABC124", ProductID: 7})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if e := out.(*registration.Entry); e.SerialNumber != "ABC124" || e.UserID != 99 {
		t.Errorf("unexpected entry after edit %+v", e.Registration)
	}

	if _, err := d.Dispatch(ctx, operator, dispatch.DeleteRegistration{ID: reg.RegistrationID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := d.Dispatch(ctx, customer, dispatch.ValidateSerial{SerialNumber: "ABC124"}); !errors.Is(err, claim.ErrNotFound) {
		t.Errorf("validate after delete: expected ErrNotFound, got %v", err)
	}
}
