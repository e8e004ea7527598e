package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// FaultKind classifies a command-surface failure. Parse failures on
// external asteroid records are deliberately not represented: the NeoWs
// adapter drops and logs those records instead of surfacing them, and
// numerical edges inside the integrator self-heal to zero.
type FaultKind int

const (
	FaultBadInput FaultKind = iota
	FaultMissingInput
	FaultNotFound
	FaultUpstream
	FaultInternal
)

// Code is the stable wire identifier for the kind.
func (k FaultKind) Code() string {
	switch k {
	case FaultBadInput:
		return "bad_input"
	case FaultMissingInput:
		return "missing_input"
	case FaultNotFound:
		return "not_found"
	case FaultUpstream:
		return "upstream_failure"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind onto the command surface's transport.
func (k FaultKind) HTTPStatus() int {
	switch k {
	case FaultBadInput, FaultMissingInput:
		return http.StatusBadRequest
	case FaultNotFound:
		return http.StatusNotFound
	case FaultUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fault is a classified command failure. The wire code and HTTP status
// both derive from the kind, so a call site states only what went wrong.
type Fault struct {
	Kind   FaultKind
	Reason string
	cause  error
}

func (f *Fault) Error() string {
	if f.cause == nil {
		return f.Reason
	}
	return f.Reason + ": " + f.cause.Error()
}

func (f *Fault) Unwrap() error { return f.cause }

// Faultf builds a fault of the given kind.
func Faultf(kind FaultKind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// FaultFrom classifies an underlying error.
func FaultFrom(kind FaultKind, err error, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Reason: fmt.Sprintf(format, args...), cause: err}
}

// AsFault extracts the Fault from an error chain. Errors that were never
// classified come back as FaultInternal so the surface still answers with
// a well-formed envelope.
func AsFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Kind: FaultInternal, Reason: "internal error", cause: err}
}
