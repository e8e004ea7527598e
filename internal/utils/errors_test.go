package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFaultKindMapping(t *testing.T) {
	testCases := []struct {
		kind   FaultKind
		code   string
		status int
	}{
		{FaultBadInput, "bad_input", http.StatusBadRequest},
		{FaultMissingInput, "missing_input", http.StatusBadRequest},
		{FaultNotFound, "not_found", http.StatusNotFound},
		{FaultUpstream, "upstream_failure", http.StatusBadGateway},
		{FaultInternal, "internal", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			if got := tc.kind.Code(); got != tc.code {
				t.Errorf("code = %q, want %q", got, tc.code)
			}
			if got := tc.kind.HTTPStatus(); got != tc.status {
				t.Errorf("status = %d, want %d", got, tc.status)
			}
		})
	}
}

func TestFaultWrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	f := FaultFrom(FaultUpstream, cause, "NeoWs feed fetch failed")

	if !errors.Is(f, cause) {
		t.Error("cause lost from error chain")
	}
	want := "NeoWs feed fetch failed: connection refused"
	if f.Error() != want {
		t.Errorf("message = %q, want %q", f.Error(), want)
	}
}

func TestAsFaultPassthrough(t *testing.T) {
	f := Faultf(FaultNotFound, "body %q not found", "apophis")
	got := AsFault(fmt.Errorf("while deflecting: %w", f))
	if got.Kind != FaultNotFound {
		t.Errorf("kind = %v, want not_found", got.Kind)
	}
}

func TestAsFaultDefaultsToInternal(t *testing.T) {
	got := AsFault(errors.New("surprise"))
	if got.Kind != FaultInternal {
		t.Errorf("unclassified error mapped to %v", got.Kind)
	}
	if !errors.Is(got, got.cause) {
		t.Error("original error not preserved as cause")
	}
}
