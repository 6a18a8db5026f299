package apierror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
	"github.com/stretchr/testify/require"
)

func TestParameterError(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		err := apierror.Missing("Integer")
		require.ErrorIs(t, err, apierror.ErrInvalidParameter)
		require.ErrorIs(t, err, apierror.ErrMissingParameter)
		require.ErrorIs(t, err, apierror.ErrSDK)
		require.NotErrorIs(t, err, apierror.ErrWrongType)
		require.Equal(t, "invalid parameter: Parameter is required", err.Error())
	})

	t.Run("wrong type", func(t *testing.T) {
		err := apierror.WrongType("Double", "abc")
		require.ErrorIs(t, err, apierror.ErrWrongType)
		require.NotErrorIs(t, err, apierror.ErrMissingParameter)
		require.Equal(t, "invalid parameter: Parameter is not Double", err.Error())
	})
}

func TestTokenExpired(t *testing.T) {
	err := fmt.Errorf("call: %w", apierror.TokenExpired())
	require.ErrorIs(t, err, apierror.ErrTokenExpired)
	require.ErrorIs(t, err, apierror.ErrSDK)
	require.NotErrorIs(t, err, apierror.ErrRPCAPI)
}

func TestInvalidKeyError(t *testing.T) {
	cause := errors.New("Fault(2): [InvalidKey]Invalid Key")
	var err error = &apierror.InvalidKeyError{RPCError: &apierror.RPCError{
		FaultCode:   2,
		FaultString: "[InvalidKey]Invalid Key",
		Message:     cause.Error(),
		Err:         cause,
	}}

	require.ErrorIs(t, err, apierror.ErrInvalidKey)
	require.ErrorIs(t, err, apierror.ErrRPCAPI)
	require.ErrorIs(t, err, apierror.ErrSDK)
	require.ErrorIs(t, err, cause)

	var rpcErr *apierror.RPCError
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, 2, rpcErr.FaultCode)

	var keyErr *apierror.InvalidKeyError
	require.True(t, errors.As(err, &keyErr))
	require.Contains(t, err.Error(), "XML-RPC API Error")
}

func TestRESTError(t *testing.T) {
	err := &apierror.RESTError{Method: "GET", URL: "https://x/contacts", StatusCode: 404, Body: []byte(`{"message":"nope"}`)}
	require.ErrorIs(t, err, apierror.ErrRESTAPI)
	require.NotErrorIs(t, err, apierror.ErrRPCAPI)
	require.Contains(t, err.Error(), "status 404")
}
