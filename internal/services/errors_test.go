package services_test

import (
	"errors"
	"net/http"
	"testing"

	"gleaner/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConflict, "review", "approve", "grant already reviewed", base)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "fetch", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", services.Wrap(services.ErrNotFound, "review", "get", "unknown grant", nil), http.StatusNotFound},
		{"conflict", services.Wrap(services.ErrConflict, "review", "reject", "already terminal", nil), http.StatusConflict},
		{"validation", services.Wrap(services.ErrValidation, "review", "reject", "reason required", nil), http.StatusBadRequest},
		{"configuration", services.Wrap(services.ErrConfiguration, "run", "resolve sources", "no adapters", nil), http.StatusBadRequest},
		{"transient", errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, got)
		}
	}
}
