package account

// Account is a storefront user as seen by the registration server. UserID
// mirrors the id carried in the customer's identity token.
type Account struct {
	UserID      int64  `db:"user_id" json:"userId"`
	UserLogin   string `db:"user_login" json:"userLogin"`
	Email       string `db:"email" json:"email"`
	DisplayName string `db:"display_name" json:"displayName"`
}
