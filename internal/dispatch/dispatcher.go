package dispatch

import (
	"context"
	"errors"
	"fmt"

	"winsbygroup.com/prodreg/internal/claim"
	"winsbygroup.com/prodreg/internal/maintenance"
	"winsbygroup.com/prodreg/internal/registration"
)

var (
	ErrInvalidToken     = errors.New("invalid or missing request token")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnknownRequest   = errors.New("unknown request")
)

// Caller is who is asking, as established by the HTTP layer.
type Caller struct {
	UserID        int64
	Operator      bool
	TokenVerified bool
}

// Dispatcher checks a caller against an operation's requirements and only
// then runs it.
type Dispatcher struct {
	claimSvc *claim.Service
	maintSvc *maintenance.Service
}

func New(claimSvc *claim.Service, maintSvc *maintenance.Service) *Dispatcher {
	return &Dispatcher{claimSvc: claimSvc, maintSvc: maintSvc}
}

// Allow reports whether c may run req without running it.
func Allow(c Caller, req Request) error {
	r := req.rule()
	if r.token && !c.TokenVerified {
		return ErrInvalidToken
	}
	if r.auth && c.UserID == registration.Unclaimed {
		return claim.ErrAuthRequired
	}
	if r.operator && !c.Operator {
		return ErrPermissionDenied
	}
	return nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, c Caller, req Request) (any, error) {
	if req == nil {
		return nil, ErrUnknownRequest
	}
	if err := Allow(c, req); err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case ValidateSerial:
		return d.claimSvc.Validate(ctx, r.SerialNumber)
	case RegisterProduct:
		return d.claimSvc.Register(ctx, claim.RegisterRequest{
			SerialNumber: r.SerialNumber,
			ProductID:    r.ProductID,
			UserID:       c.UserID,
			Proof:        r.Proof,
		})
	case ListMyRegistrations:
		return d.claimSvc.ListForUser(ctx, c.UserID)
	case ListRegistrations:
		return d.maintSvc.List(ctx)
	case GetRegistration:
		return d.maintSvc.Get(ctx, r.ID)
	case EditRegistration:
		if err := d.maintSvc.Edit(ctx, r.ID, r.SerialNumber, r.ProductID); err != nil {
			return nil, err
		}
		return d.maintSvc.Get(ctx, r.ID)
	case DeleteRegistration:
		return nil, d.maintSvc.Delete(ctx, r.ID)
	case ImportSerials:
		return d.maintSvc.Import(ctx, r.Filename, r.Body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRequest, req.Name())
	}
}
