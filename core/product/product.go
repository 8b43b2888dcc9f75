package product

// Product is a catalog record. The cart engine only ever reads it: the
// catalog has no mutation surface.
type Product struct {
	ID       string `json:"_id" db:"product_id"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`
	Cost     int    `json:"cost" db:"cost"`
	Rating   int    `json:"rating" db:"rating"`
	Image    string `json:"image" db:"image"`
}
