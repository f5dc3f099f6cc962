package web

import (
	"winsbygroup.com/prodreg/internal/http/admin"
	vm "winsbygroup.com/prodreg/internal/viewmodels"
)

// Re-export types for convenience
type (
	Registration = vm.Registration
	Flash        = vm.Flash
)

// FromRegistration converts an API registration to view model
func FromRegistration(r admin.RegistrationResponse) vm.Registration {
	return vm.Registration{
		RegistrationID:   r.RegistrationID,
		UserID:           r.UserID,
		UserLogin:        r.UserLogin,
		ProductID:        r.ProductID,
		ProductName:      r.ProductName,
		SerialNumber:     r.SerialNumber,
		RegistrationDate: r.RegistrationDate,
		ProofURL:         r.ProofURL,
	}
}

// FromRegistrations converts a slice of API registrations to view models
func FromRegistrations(rows []admin.RegistrationResponse) []vm.Registration {
	result := make([]vm.Registration, len(rows))
	for i, r := range rows {
		result[i] = FromRegistration(r)
	}
	return result
}

// flashes are the notices a redirect may ask the index page to show
var flashes = map[string]vm.Flash{
	"updated": {Message: "Registration updated."},
	"deleted": {Message: "Registration deleted."},
}
