package weberr

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewErrorResponse(t *testing.T) {
	cause := errors.New("cart has no items")
	err := NewError(cause, "empty Cart", http.StatusBadRequest)

	body, status, ok := Response(err)
	if !ok {
		t.Fatal("error built by NewError must carry a response")
	}
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
	}

	resp, ok := body.(*ErrorResponse)
	if !ok {
		t.Fatalf("body is %T, want *ErrorResponse", body)
	}
	if resp.Error != "empty Cart" {
		t.Errorf("message = %q, want %q", resp.Error, "empty Cart")
	}

	if !errors.Is(err, cause) {
		t.Error("wrapped error must unwrap to its cause")
	}
}

func TestTaxonomyStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", BadRequest(errors.New("x")), http.StatusBadRequest},
		{"not found", NotFound(errors.New("x")), http.StatusNotFound},
		{"not authorized", NotAuthorized(errors.New("x")), http.StatusUnauthorized},
		{"internal", InternalError(errors.New("x")), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, status, ok := Response(tc.err)
			if !ok || status != tc.want {
				t.Errorf("Response = (%d, %v), want status %d", status, ok, tc.want)
			}
		})
	}
}

func TestFields(t *testing.T) {
	err := Wrap(errors.New("x"), WithFields(map[string]interface{}{"user": "42"}))

	fields, ok := Fields(err)
	if !ok || fields["user"] != "42" {
		t.Errorf("Fields = (%v, %v), want the attached map", fields, ok)
	}

	if _, ok := Fields(errors.New("bare")); ok {
		t.Error("bare errors must not report fields")
	}
}
