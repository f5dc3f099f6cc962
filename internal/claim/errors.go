package claim

import "errors"

var (
	ErrNotFound           = errors.New("invalid serial number")
	ErrAlreadyClaimed     = errors.New("serial number already registered")
	ErrProductMissing     = errors.New("product not found")
	ErrAuthRequired       = errors.New("login required")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrUploadFailed       = errors.New("proof upload failed")
)

const SuccessMessage = "Product successfully registered."

var messages = []struct {
	err error
	msg string
}{
	{ErrNotFound, "Invalid serial number."},
	{ErrAlreadyClaimed, "This serial number has already been registered."},
	{ErrProductMissing, "Product not found."},
	{ErrAuthRequired, "You must be logged in to register a product."},
	{ErrRegistrationFailed, "Failed to register product."},
	{ErrUploadFailed, "Failed to upload purchase proof."},
}

// Message maps an error to the text shown to customers. Anything unknown
// reads as a failed registration.
func Message(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Failed to register product."
}
