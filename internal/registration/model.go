package registration

// Unclaimed is the user_id sentinel for a serial nobody has registered yet.
const Unclaimed int64 = 0

// DateLayout is the stored form of registration_date (UTC).
const DateLayout = "2006-01-02 15:04:05"

// Registration is one serial number row.
type Registration struct {
	RegistrationID   int64  `db:"registration_id" json:"id"`
	UserID           int64  `db:"user_id" json:"userId"`
	ProductID        int64  `db:"product_id" json:"productId"`
	SerialNumber     string `db:"serial_number" json:"serialNumber"`
	RegistrationDate string `db:"registration_date" json:"registrationDate"`
	PurchaseProof    string `db:"purchase_proof" json:"purchaseProof"`
}

// Claimed reports whether the row has an owner.
func (r *Registration) Claimed() bool {
	return r.UserID != Unclaimed
}

// Entry is a registration joined with the catalog product name and the
// owner's login. Both are empty when the reference does not resolve.
type Entry struct {
	Registration
	ProductName string `db:"product_name" json:"productName"`
	UserLogin   string `db:"user_login" json:"userLogin"`
}
