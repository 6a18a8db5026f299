package ifsxml

import (
	"context"
	"fmt"
	"net/rpc"
	"reflect"

	"go.uber.org/zap"
)

// Caller is the low-level transport primitive. It signals completion exactly once on
// the call's Done channel with either a reply or an error. *xmlrpc.Client satisfies it.
type Caller interface {
	Go(serviceMethod string, args any, reply any, done chan *rpc.Call) *rpc.Call
}

// Pipeline runs the mutator chain and then dispatches the resulting call once.
type Pipeline struct {
	mutate    MethodCallMutator
	caller    Caller
	normalize ErrorNormalizer
	logger    *zap.Logger
}

// NewPipeline builds a pipeline. A nil normalizer defaults to NormalizeFault.
func NewPipeline(caller Caller, mutators []MethodCallMutator, normalize ErrorNormalizer, logger *zap.Logger) *Pipeline {
	if normalize == nil {
		normalize = NormalizeFault
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		mutate:    Compose(mutators...),
		caller:    caller,
		normalize: normalize,
		logger:    logger,
	}
}

// Invoke mutates (method, params), dispatches the call and decodes the result into reply,
// which must be a non-nil pointer. A mutator rejection is returned as is and the transport
// is never reached. The transport runs on its own goroutine, so a done ctx returns
// ctx.Err() at once; reply is only written when the call completes in time.
func (p *Pipeline) Invoke(ctx context.Context, method string, params []any, reply any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	target := reflect.ValueOf(reply)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("reply for %s must be a non-nil pointer", method)
	}

	call, err := p.mutate(ctx, Call{Method: method, Params: append([]any(nil), params...)})
	if err != nil {
		p.logger.Debug("Call rejected before dispatch", zap.String("method", method), zap.Error(err))
		return err
	}
	if call.Params == nil {
		call.Params = []any{}
	}

	p.logger.Debug("Dispatching XML-RPC call",
		zap.String("method", call.Method),
		zap.Int("params", len(call.Params)))

	// The transport may block inside Go for the whole round trip.
	decoded := reflect.New(target.Elem().Type())
	completed := make(chan *rpc.Call, 1)
	go func() {
		pending := p.caller.Go(call.Method, call.Params, decoded.Interface(), make(chan *rpc.Call, 1))
		completed <- <-pending.Done
	}()

	select {
	case done := <-completed:
		if done.Error != nil {
			normalized := p.normalize(call, done.Error)
			p.logger.Error("XML-RPC call failed", zap.String("method", call.Method), zap.Error(normalized))
			return normalized
		}
		target.Elem().Set(decoded.Elem())
		return nil
	case <-ctx.Done():
		p.logger.Debug("XML-RPC call abandoned", zap.String("method", call.Method), zap.Error(ctx.Err()))
		return ctx.Err()
	}
}
