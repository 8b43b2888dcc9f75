package cart

import (
	"time"

	"github.com/qkart/backend/core/product"
)

// Cart is the per-user pending purchase. Email is the primary key: one cart
// per user, created lazily on the first add and never deleted (checkout only
// empties it). Version counts committed mutations.
type Cart struct {
	Email         string    `json:"email" db:"email"`
	PaymentOption string    `json:"paymentOption" db:"payment_option"`
	Version       int       `json:"-" db:"version"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
	Items         []Item    `json:"cartItems" db:"-"`
}

// Item pairs a product snapshot with a purchase quantity. A cart holds at
// most one item per product id.
type Item struct {
	Snapshot `json:"product"`

	Email    string    `json:"-" db:"email"`
	Quantity int       `json:"quantity" db:"quantity"`
	AddedAt  time.Time `json:"-" db:"added_at"`
}

// Snapshot is a copy of the product taken when the item was added. The cost
// is frozen at add time, not resolved against the live catalog at checkout.
type Snapshot struct {
	ProductID string `json:"_id" db:"product_id"`
	Name      string `json:"name" db:"name"`
	Category  string `json:"category" db:"category"`
	Cost      int    `json:"cost" db:"cost"`
	Image     string `json:"image" db:"image"`
}

func NewSnapshot(prd product.Product) Snapshot {
	return Snapshot{
		ProductID: prd.ID,
		Name:      prd.Name,
		Category:  prd.Category,
		Cost:      prd.Cost,
		Image:     prd.Image,
	}
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

// TotalCost is the sum of cost times quantity over all items, in the same
// integer units the wallet is held in.
func TotalCost(items []Item) int {
	var total int
	for _, it := range items {
		total += it.Cost * it.Quantity
	}
	return total
}

func findItem(items []Item, productID string) (Item, bool) {
	for _, it := range items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return Item{}, false
}
