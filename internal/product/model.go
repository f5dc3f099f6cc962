package product

// Product is a catalog entry a serial number can point at.
type Product struct {
	ProductID   int64  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`
	ImageURL    string `db:"image_url" json:"imageUrl"`
	Permalink   string `db:"permalink" json:"permalink"`
}
