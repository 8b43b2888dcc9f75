package claims

import (
	"context"
	"testing"
)

func TestSetGet(t *testing.T) {
	ctx := Set(context.Background(), Claims{UserID: "42", Email: "test@test.com"})

	c, err := Get(ctx)
	if err != nil {
		t.Fatalf("getting claims: %v", err)
	}
	if c.UserID != "42" || c.Email != "test@test.com" {
		t.Errorf("claims = %+v, want the stored values", c)
	}

	if _, err := Get(context.Background()); err == nil {
		t.Error("expected an error on a context without claims")
	}
}

func TestIsUser(t *testing.T) {
	ctx := Set(context.Background(), Claims{UserID: "42"})

	if !IsUser(ctx, "42") {
		t.Error("IsUser must accept the claim owner")
	}
	if IsUser(ctx, "43") {
		t.Error("IsUser must reject other ids")
	}
	if IsUser(context.Background(), "42") {
		t.Error("IsUser must reject contexts without claims")
	}
}
