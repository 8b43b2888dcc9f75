package validate

import "testing"

type payload struct {
	Email    string `validate:"required,email"`
	Quantity int    `validate:"min=0"`
}

func TestCheck(t *testing.T) {
	if err := Check(payload{Email: "test@test.com", Quantity: 1}); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}

	if err := Check(payload{Email: "not-an-email", Quantity: 1}); err == nil {
		t.Error("invalid email accepted")
	}

	if err := Check(payload{Email: "test@test.com", Quantity: -1}); err == nil {
		t.Error("negative quantity accepted")
	}
}

func TestCheckID(t *testing.T) {
	if err := CheckID(GenerateID()); err != nil {
		t.Errorf("generated ID rejected: %v", err)
	}

	if err := CheckID("not-a-uuid"); err == nil {
		t.Error("malformed ID accepted")
	}
}
