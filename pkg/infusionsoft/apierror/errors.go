// Package apierror defines the closed set of errors surfaced by the Infusionsoft client.
//
// Classify errors with errors.Is against the sentinels below, or errors.As against the
// typed errors. Every error produced by the client matches ErrSDK.
package apierror

import (
	"errors"
	"fmt"
)

var (
	// ErrSDK is the root of the taxonomy.
	ErrSDK = errors.New("infusionsoft sdk error")

	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMissingParameter = errors.New("parameter is required")
	ErrWrongType        = errors.New("parameter has wrong type")

	ErrTokenExpired = errors.New("oauth2 token expired")

	ErrRPCAPI     = errors.New("xml-rpc api error")
	ErrInvalidKey = errors.New("invalid key")
	ErrRESTAPI    = errors.New("rest api error")
)

// ParameterError is a coercion failure. It is always raised before any network activity.
type ParameterError struct {
	// Reason is ErrMissingParameter or ErrWrongType.
	Reason error
	// Kind is the wire kind the value was coerced to, e.g. "Integer".
	Kind  string
	Value any
}

// Missing returns a ParameterError for an absent required value.
func Missing(kind string) *ParameterError {
	return &ParameterError{Reason: ErrMissingParameter, Kind: kind}
}

// WrongType returns a ParameterError for a present value of the wrong shape.
func WrongType(kind string, value any) *ParameterError {
	return &ParameterError{Reason: ErrWrongType, Kind: kind, Value: value}
}

func (e *ParameterError) Error() string {
	if errors.Is(e.Reason, ErrMissingParameter) {
		return "invalid parameter: Parameter is required"
	}
	return fmt.Sprintf("invalid parameter: Parameter is not %s", e.Kind)
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrSDK || target == ErrInvalidParameter || target == e.Reason
}

// tokenExpired wraps ErrTokenExpired so it also matches the root sentinel.
type tokenExpired struct{}

func (tokenExpired) Error() string { return ErrTokenExpired.Error() }

func (tokenExpired) Is(target error) bool {
	return target == ErrSDK || target == ErrTokenExpired
}

// TokenExpired returns the rejection produced by the expiry gate.
func TokenExpired() error {
	return tokenExpired{}
}
