package admin

// -------------------------
// Registration DTOs
// -------------------------

type UpdateRegistrationRequest struct {
	SerialNumber string `json:"serialNumber"`
	ProductID    int64  `json:"productId"`
}

type RegistrationResponse struct {
	RegistrationID   int64  `json:"id"`
	SerialNumber     string `json:"serialNumber"`
	ProductID        int64  `json:"productId"`
	ProductName      string `json:"productName"`
	UserID           int64  `json:"userId"`
	UserLogin        string `json:"userLogin"`
	RegistrationDate string `json:"registrationDate"`
	ProofURL         string `json:"proofUrl,omitempty"`
}

// -------------------------
// Product DTOs
// -------------------------

type CreateProductRequest struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	Permalink string `json:"permalink"`
}

type UpdateProductRequest struct {
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	Permalink string `json:"permalink"`
}

// -------------------------
// Account DTOs
// -------------------------

type CreateAccountRequest struct {
	UserID      int64  `json:"userId"`
	UserLogin   string `json:"userLogin"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type UpdateAccountRequest struct {
	UserLogin   string `json:"userLogin"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}
