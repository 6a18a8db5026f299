package ifsxml_test

import (
	"context"
	"errors"
	"net/rpc"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/token"
	ifsxml "github.com/natserract/infusionsoft/pkg/infusionsoft/xmlrpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeCaller records dispatched calls and completes them with a canned result.
type fakeCaller struct {
	mu     sync.Mutex
	calls  []ifsxml.Call
	result any
	err    error
	block  chan struct{}
	closed bool
}

func (f *fakeCaller) Go(method string, args any, reply any, done chan *rpc.Call) *rpc.Call {
	f.mu.Lock()
	f.calls = append(f.calls, ifsxml.Call{Method: method, Params: args.([]any)})
	f.mu.Unlock()

	call := &rpc.Call{ServiceMethod: method, Args: args, Reply: reply, Done: done}
	go func() {
		if f.block != nil {
			<-f.block
		}
		if f.err != nil {
			call.Error = f.err
		} else if f.result != nil {
			reflect.ValueOf(reply).Elem().Set(reflect.ValueOf(f.result))
		}
		done <- call
	}()
	return call
}

func (f *fakeCaller) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeCaller) dispatched() []ifsxml.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ifsxml.Call(nil), f.calls...)
}

func TestPipelineAppliesMutatorsInOrder(t *testing.T) {
	caller := &fakeCaller{result: "ok"}
	appendTag := func(tag string) ifsxml.MethodCallMutator {
		return func(_ context.Context, call ifsxml.Call) (ifsxml.Call, error) {
			return call.Append(tag), nil
		}
	}
	p := ifsxml.NewPipeline(caller, []ifsxml.MethodCallMutator{appendTag("m1"), appendTag("m2")}, nil, zaptest.NewLogger(t))

	var reply any
	require.NoError(t, p.Invoke(context.Background(), "Foo.bar", []any{1}, &reply))
	require.Equal(t, "ok", reply)

	calls := caller.dispatched()
	require.Len(t, calls, 1)
	require.Equal(t, "Foo.bar", calls[0].Method)
	require.Equal(t, []any{1, "m1", "m2"}, calls[0].Params)
}

func TestPipelineShortCircuitsOnRejection(t *testing.T) {
	caller := &fakeCaller{result: "ok"}
	rejection := errors.New("m1 rejected")
	var m2Ran bool

	p := ifsxml.NewPipeline(caller, []ifsxml.MethodCallMutator{
		func(context.Context, ifsxml.Call) (ifsxml.Call, error) { return ifsxml.Call{}, rejection },
		func(_ context.Context, call ifsxml.Call) (ifsxml.Call, error) { m2Ran = true; return call, nil },
	}, nil, zaptest.NewLogger(t))

	var reply any
	err := p.Invoke(context.Background(), "Foo.bar", []any{1, 2}, &reply)
	require.ErrorIs(t, err, rejection)
	require.False(t, m2Ran)
	require.Empty(t, caller.dispatched())
}

func TestPipelineDoesNotMutateCallerParams(t *testing.T) {
	caller := &fakeCaller{result: "ok"}
	p := ifsxml.NewPipeline(caller, []ifsxml.MethodCallMutator{ifsxml.PrivateKey("KEY")}, nil, zaptest.NewLogger(t))

	params := []any{1, 2}
	var reply any
	require.NoError(t, p.Invoke(context.Background(), "Foo.bar", params, &reply))
	require.Equal(t, []any{1, 2}, params)
	require.Equal(t, []any{"KEY", 1, 2}, caller.dispatched()[0].Params)
}

func TestPipelineNormalizesTransportFaults(t *testing.T) {
	caller := &fakeCaller{err: rpc.ServerError("Fault(2): [InvalidKey]Invalid Key")}
	p := ifsxml.NewPipeline(caller, nil, nil, zaptest.NewLogger(t))

	var reply any
	err := p.Invoke(context.Background(), "ContactService.load", nil, &reply)
	require.ErrorIs(t, err, apierror.ErrInvalidKey)

	var rpcErr *apierror.RPCError
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, "ContactService.load", rpcErr.Method)
	require.Equal(t, 2, rpcErr.FaultCode)
}

func TestPipelineCustomNormalizer(t *testing.T) {
	boom := errors.New("boom")
	wrapped := errors.New("wrapped")
	caller := &fakeCaller{err: boom}
	p := ifsxml.NewPipeline(caller, nil, func(call ifsxml.Call, err error) error {
		require.Equal(t, "X.y", call.Method)
		require.ErrorIs(t, err, boom)
		return wrapped
	}, zaptest.NewLogger(t))

	var reply any
	require.ErrorIs(t, p.Invoke(context.Background(), "X.y", nil, &reply), wrapped)
}

func TestPipelineHonorsContext(t *testing.T) {
	caller := &fakeCaller{block: make(chan struct{})}
	defer close(caller.block)
	p := ifsxml.NewPipeline(caller, nil, nil, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var reply any
	require.ErrorIs(t, p.Invoke(ctx, "Slow.call", nil, &reply), context.DeadlineExceeded)
}

// blockingCaller does the whole round trip inside Go, as the XML-RPC client does.
type blockingCaller struct {
	release chan struct{}
}

func (b *blockingCaller) Go(method string, args any, reply any, done chan *rpc.Call) *rpc.Call {
	<-b.release
	call := &rpc.Call{ServiceMethod: method, Args: args, Reply: reply, Done: done}
	done <- call
	return call
}

func TestPipelineHonorsContextWhenDispatchBlocks(t *testing.T) {
	caller := &blockingCaller{release: make(chan struct{})}
	defer close(caller.release)
	p := ifsxml.NewPipeline(caller, nil, nil, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	reply := "untouched"
	require.ErrorIs(t, p.Invoke(ctx, "Slow.call", nil, &reply), context.DeadlineExceeded)
	require.Equal(t, "untouched", reply)
}

func TestPipelineRequiresPointerReply(t *testing.T) {
	caller := &fakeCaller{result: "ok"}
	p := ifsxml.NewPipeline(caller, nil, nil, zaptest.NewLogger(t))

	var reply any
	require.Error(t, p.Invoke(context.Background(), "Foo.bar", nil, reply))
	require.Empty(t, caller.dispatched())
}

func TestTokenGate(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	t.Run("no token held", func(t *testing.T) {
		caller := &fakeCaller{result: "ok"}
		gate := ifsxml.TokenGate(func() *token.Token { return nil }, now)
		p := ifsxml.NewPipeline(caller, []ifsxml.MethodCallMutator{gate}, nil, zaptest.NewLogger(t))

		var reply any
		err := p.Invoke(context.Background(), "ContactService.load", []any{1}, &reply)
		require.ErrorIs(t, err, apierror.ErrTokenExpired)
		require.NotErrorIs(t, err, apierror.ErrRPCAPI)
		require.Empty(t, caller.dispatched())
	})

	t.Run("expired token", func(t *testing.T) {
		caller := &fakeCaller{result: "ok"}
		tok := token.New(token.Fields{AccessToken: "a", ExpiresIn: 0, Now: now})
		gate := ifsxml.TokenGate(func() *token.Token { return tok }, now)
		p := ifsxml.NewPipeline(caller, []ifsxml.MethodCallMutator{gate}, nil, zaptest.NewLogger(t))

		var reply any
		require.ErrorIs(t, p.Invoke(context.Background(), "ContactService.load", []any{1}, &reply), apierror.ErrTokenExpired)
		require.Empty(t, caller.dispatched())
	})

	t.Run("active token prepends placeholder", func(t *testing.T) {
		caller := &fakeCaller{result: "ok"}
		tok := token.New(token.Fields{AccessToken: "a", ExpiresIn: 60, Now: now})
		gate := ifsxml.TokenGate(func() *token.Token { return tok }, now)
		p := ifsxml.NewPipeline(caller, []ifsxml.MethodCallMutator{gate}, nil, zaptest.NewLogger(t))

		var reply any
		require.NoError(t, p.Invoke(context.Background(), "ContactService.load", []any{1}, &reply))
		require.Equal(t, []any{"", 1}, caller.dispatched()[0].Params)
	})
}

func TestCompose(t *testing.T) {
	double := func(_ context.Context, call ifsxml.Call) (ifsxml.Call, error) {
		return call.Append(call.Params...), nil
	}
	composed := ifsxml.Compose(double, ifsxml.PrivateKey("k"))
	got, err := composed(context.Background(), ifsxml.Call{Method: "A.b", Params: []any{1}})
	require.NoError(t, err)
	require.Equal(t, ifsxml.Call{Method: "A.b", Params: []any{"k", 1, 1}}, got)

	empty, err := ifsxml.Compose()(context.Background(), ifsxml.Call{Method: "A.b"})
	require.NoError(t, err)
	require.Equal(t, "A.b", empty.Method)
}

func TestAPIRetireWaitsForInflightCalls(t *testing.T) {
	caller := &fakeCaller{result: "ok", block: make(chan struct{})}
	api := ifsxml.NewWithCaller(caller, ifsxml.Config{}, zaptest.NewLogger(t))

	result := make(chan error, 1)
	go func() {
		_, err := api.Request(context.Background(), "Slow.call")
		result <- err
	}()

	require.Eventually(t, func() bool { return len(caller.dispatched()) == 1 }, time.Second, time.Millisecond)
	api.Retire()

	caller.mu.Lock()
	closedEarly := caller.closed
	caller.mu.Unlock()
	require.False(t, closedEarly)

	close(caller.block)
	require.NoError(t, <-result)

	caller.mu.Lock()
	defer caller.mu.Unlock()
	require.True(t, caller.closed)
}
