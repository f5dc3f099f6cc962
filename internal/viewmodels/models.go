package viewmodels

import (
	"strconv"
	"time"
)

const dateLayout = "2006-01-02 15:04:05"

// Registration is a view model for one row of the operator table
type Registration struct {
	RegistrationID   int64
	UserID           int64
	UserLogin        string
	ProductID        int64
	ProductName      string
	SerialNumber     string
	RegistrationDate string
	ProofURL         string
}

// Claimed reports whether a customer owns the serial number
func (r Registration) Claimed() bool {
	return r.UserID != 0
}

// UserText returns the owner for display
func (r Registration) UserText() string {
	switch {
	case !r.Claimed():
		return "Unclaimed"
	case r.UserLogin != "":
		return r.UserLogin
	default:
		return "Unknown user"
	}
}

// ProductText returns the product name, or its id when the catalog has no entry
func (r Registration) ProductText() string {
	if r.ProductName != "" {
		return r.ProductName
	}
	return "#" + strconv.FormatInt(r.ProductID, 10)
}

// Owned is a view model for a customer's own registration
type Owned struct {
	ProductName      string
	SerialNumber     string
	RegistrationDate string
	ProofURL         string
}

// DateText formats a stored date for display. Unparseable values are shown as stored.
func DateText(stored string) string {
	t, err := time.Parse(dateLayout, stored)
	if err != nil {
		return stored
	}
	return t.Format("Jan 2, 2006 15:04") + " UTC"
}

// Flash is a one-shot notice on the operator page
type Flash struct {
	Message string
	Error   bool
}
