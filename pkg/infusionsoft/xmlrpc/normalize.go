package ifsxml

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/kolo/xmlrpc"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
)

const (
	// FaultMarker prefixes every fault message the XML-RPC codec produces.
	FaultMarker = "Fault("
	// InvalidKeyMarker appears in the fault string when the API key is rejected.
	InvalidKeyMarker = "InvalidKey"

	statusMarker = "bad status code - "
)

var (
	faultPattern  = regexp.MustCompile(`(?s)Fault\((-?\d+)\): (.*)`)
	statusPattern = regexp.MustCompile(`bad status code - (\d+)`)
)

// ErrorNormalizer maps a failed transport call onto the error taxonomy.
type ErrorNormalizer func(call Call, err error) error

// NormalizeFault wraps XML-RPC faults into *apierror.RPCError, specialized to
// *apierror.InvalidKeyError when the fault string carries InvalidKeyMarker.
// Errors already in the taxonomy and unrecognized failures are returned unchanged.
func NormalizeFault(call Call, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apierror.ErrSDK) {
		return err
	}

	msg := err.Error()
	rpcErr := &apierror.RPCError{
		Method:  call.Method,
		Message: msg,
		Err:     err,
	}

	var fault xmlrpc.FaultError
	switch {
	case errors.As(err, &fault):
		rpcErr.FaultCode = fault.Code
		rpcErr.FaultString = fault.String
	case strings.Contains(msg, FaultMarker):
		if m := faultPattern.FindStringSubmatch(msg); m != nil {
			rpcErr.FaultCode, _ = strconv.Atoi(m[1])
			rpcErr.FaultString = m[2]
		}
	case strings.Contains(msg, statusMarker):
		if m := statusPattern.FindStringSubmatch(msg); m != nil {
			rpcErr.StatusCode, _ = strconv.Atoi(m[1])
		}
	default:
		return err
	}

	if strings.Contains(rpcErr.FaultString, InvalidKeyMarker) {
		return &apierror.InvalidKeyError{RPCError: rpcErr}
	}
	return rpcErr
}
