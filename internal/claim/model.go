package claim

import "winsbygroup.com/prodreg/internal/proof"

// ProductSummary is what a customer sees after a successful validation.
type ProductSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	URL   string `json:"url"`
}

type RegisterRequest struct {
	SerialNumber string
	ProductID    int64
	UserID       int64
	Proof        *proof.Upload
}

type Confirmation struct {
	Message  string   `json:"message"`
	ProofRef string   `json:"-"`
	Warnings []string `json:"warnings,omitempty"`
}

// Owned is one row of a customer's own registrations.
type Owned struct {
	ProductName      string `json:"productName"`
	SerialNumber     string `json:"serialNumber"`
	RegistrationDate string `json:"registrationDate"`
	ProofURL         string `json:"proofUrl"`
}
