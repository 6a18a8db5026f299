// Package ifsxml dispatches Infusionsoft XML-RPC calls through an ordered chain of
// method-call mutators before they reach the wire.
//
// Mutators attach credentials or reject the call outright; the transport is reached
// only after every mutator in the chain succeeds. Transport faults are normalized onto
// the apierror taxonomy by an ErrorNormalizer stage fixed at construction.
package ifsxml

import (
	"context"
)

// Call is one remote invocation. Mutators never modify a Call in place.
type Call struct {
	Method string
	Params []any
}

// Prepend returns a new Call with values placed before the existing params.
func (c Call) Prepend(values ...any) Call {
	params := make([]any, 0, len(values)+len(c.Params))
	params = append(params, values...)
	params = append(params, c.Params...)
	return Call{Method: c.Method, Params: params}
}

// Append returns a new Call with values placed after the existing params.
func (c Call) Append(values ...any) Call {
	params := make([]any, 0, len(values)+len(c.Params))
	params = append(params, c.Params...)
	params = append(params, values...)
	return Call{Method: c.Method, Params: params}
}

// MethodCallMutator transforms an outgoing call or rejects it with an error.
type MethodCallMutator func(ctx context.Context, call Call) (Call, error)

// Compose folds mutators left to right into one, stopping at the first rejection.
func Compose(mutators ...MethodCallMutator) MethodCallMutator {
	chain := append([]MethodCallMutator(nil), mutators...)
	return func(ctx context.Context, call Call) (Call, error) {
		for _, mutate := range chain {
			next, err := mutate(ctx, call)
			if err != nil {
				return Call{}, err
			}
			call = next
		}
		return call, nil
	}
}
