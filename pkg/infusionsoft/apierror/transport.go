package apierror

import (
	"fmt"
)

// RPCError wraps a fault raised by the XML-RPC layer.
type RPCError struct {
	Method      string
	FaultCode   int
	FaultString string
	// StatusCode is set when the endpoint answered with a non-2xx HTTP status.
	StatusCode int
	// Message is the original transport message.
	Message string
	Err     error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("XML-RPC API Error: %s", e.Message)
}

func (e *RPCError) Unwrap() error { return e.Err }

func (e *RPCError) Is(target error) bool {
	return target == ErrSDK || target == ErrRPCAPI
}

// InvalidKeyError is an RPCError whose fault says the injected key was rejected.
type InvalidKeyError struct {
	*RPCError
}

func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey || e.RPCError.Is(target)
}

// As lets errors.As(err, &rpcErr) see the embedded RPCError.
func (e *InvalidKeyError) As(target any) bool {
	if t, ok := target.(**RPCError); ok {
		*t = e.RPCError
		return true
	}
	return false
}

// RESTError wraps a failure of the REST transport.
type RESTError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *RESTError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("REST API Error: %s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, string(e.Body))
	}
	if e.Err != nil {
		return fmt.Sprintf("REST API Error: %s", e.Err.Error())
	}
	return "REST API Error"
}

func (e *RESTError) Unwrap() error { return e.Err }

func (e *RESTError) Is(target error) bool {
	return target == ErrSDK || target == ErrRESTAPI
}
