package dispatch

import (
	"io"

	"winsbygroup.com/prodreg/internal/proof"
)

// rule lists what a caller must present before an operation runs.
type rule struct {
	token    bool
	auth     bool
	operator bool
}

// Request is one of the operations below.
type Request interface {
	Name() string
	rule() rule
}

type ValidateSerial struct {
	SerialNumber string
}

type RegisterProduct struct {
	SerialNumber string
	ProductID    int64
	Proof        *proof.Upload
}

type ListMyRegistrations struct{}

type ListRegistrations struct{}

type GetRegistration struct {
	ID int64
}

type EditRegistration struct {
	ID           int64
	SerialNumber string
	ProductID    int64
}

type DeleteRegistration struct {
	ID int64
}

type ImportSerials struct {
	Filename string
	Body     io.Reader
}

func (ValidateSerial) Name() string      { return "validate_serial" }
func (RegisterProduct) Name() string     { return "register_product" }
func (ListMyRegistrations) Name() string { return "list_my_registrations" }
func (ListRegistrations) Name() string   { return "list_registrations" }
func (GetRegistration) Name() string     { return "get_registration" }
func (EditRegistration) Name() string    { return "edit_registration" }
func (DeleteRegistration) Name() string  { return "delete_registration" }
func (ImportSerials) Name() string       { return "import_serials" }

func (ValidateSerial) rule() rule      { return rule{token: true} }
func (RegisterProduct) rule() rule     { return rule{token: true, auth: true} }
func (ListMyRegistrations) rule() rule { return rule{auth: true} }
func (ListRegistrations) rule() rule   { return rule{operator: true} }
func (GetRegistration) rule() rule     { return rule{operator: true} }
func (EditRegistration) rule() rule    { return rule{token: true, operator: true} }
func (DeleteRegistration) rule() rule  { return rule{token: true, operator: true} }
func (ImportSerials) rule() rule       { return rule{token: true, operator: true} }
