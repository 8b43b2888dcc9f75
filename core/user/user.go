package user

import "time"

// User is the authenticated identity the cart engine operates on behalf of.
// WalletMoney is the only field the core ever debits, and only at checkout.
type User struct {
	ID           string    `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	WalletMoney  int       `json:"walletMoney" db:"wallet_money"`
	Address      string    `json:"address" db:"address"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type New struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AddressUp struct {
	Address string `json:"address" validate:"required,min=20"`
}

// HasSetAddress reports whether the user replaced the sentinel default with a
// real delivery address. It is the single authoritative check used by checkout.
func (u User) HasSetAddress(defaultAddress string) bool {
	return u.Address != "" && u.Address != defaultAddress
}
