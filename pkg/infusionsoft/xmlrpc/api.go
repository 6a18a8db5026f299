package ifsxml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
	httpclient "github.com/natserract/infusionsoft/pkg/http"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one XML-RPC round trip when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// ErrClosed is returned by calls on an API that was retired and cannot redial.
var ErrClosed = errors.New("xml-rpc client is closed")

// Config describes one XML-RPC endpoint and the mutators applied to its calls.
type Config struct {
	URL string
	// Transport is shared with other clients and never has its idle connections
	// closed by this API. When nil each API gets a private clone of
	// http.DefaultTransport, released on Retire.
	Transport http.RoundTripper
	// Timeout bounds each round trip, including reading the response.
	Timeout    time.Duration
	Mutators   []MethodCallMutator
	Normalizer ErrorNormalizer
}

// API is the XML-RPC surface the service catalog calls through.
type API struct {
	cfg    Config
	dial   func() (Caller, error)
	logger *zap.Logger

	mu        sync.Mutex
	pipeline  *Pipeline
	closer    io.Closer
	transport *http.Transport // owned, nil when shared
	inflight  int
	retired   bool
	closed    bool
	stale     bool
}

// New builds an XML-RPC client for cfg.URL wrapped in a pipeline. No connection is
// made until the first call.
func New(cfg Config, logger *zap.Logger) (*API, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var owned *http.Transport
	base := cfg.Transport
	if base == nil {
		owned = http.DefaultTransport.(*http.Transport).Clone()
		base = owned
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	rt := &deadlineTransport{base: base, timeout: timeout}

	dial := func() (Caller, error) {
		client, err := xmlrpc.NewClient(cfg.URL, rt)
		if err != nil {
			return nil, fmt.Errorf("failed to create xml-rpc client: %w", err)
		}
		return client, nil
	}
	caller, err := dial()
	if err != nil {
		return nil, err
	}

	api := NewWithCaller(caller, cfg, logger)
	api.dial = dial
	api.transport = owned
	api.logger.Debug("XML-RPC client created", zap.String("url", httpclient.RedactURL(cfg.URL)))
	return api, nil
}

// NewWithCaller wraps an existing transport primitive. Such an API cannot redial once
// retired and closed.
func NewWithCaller(caller Caller, cfg Config, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := &API{cfg: cfg, logger: logger}
	api.use(caller)
	return api
}

func (a *API) use(caller Caller) {
	a.pipeline = NewPipeline(caller, a.cfg.Mutators, a.cfg.Normalizer, a.logger)
	a.closer = nil
	if c, ok := caller.(io.Closer); ok {
		a.closer = c
	}
}

// Call invokes method with params and decodes the result into reply.
func (a *API) Call(ctx context.Context, method string, params []any, reply any) error {
	p, err := a.acquire()
	if err != nil {
		return err
	}
	defer a.release()

	err = p.Invoke(ctx, method, params, reply)
	if shutsDown(err) {
		a.markStale(p)
	}
	return err
}

// shutsDown reports failures after which the underlying rpc client refuses every
// further call: a non-2xx response, or a call made after one.
func shutsDown(err error) bool {
	if errors.Is(err, rpc.ErrShutdown) {
		return true
	}
	var rpcErr *apierror.RPCError
	return errors.As(err, &rpcErr) && rpcErr.StatusCode != 0
}

func (a *API) markStale(p *Pipeline) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pipeline == p && a.dial != nil {
		a.stale = true
	}
}

// Request invokes method and returns the decoded result.
func (a *API) Request(ctx context.Context, method string, params ...any) (any, error) {
	var reply any
	if err := a.Call(ctx, method, params, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Retire releases the underlying client once calls already in flight have finished.
// A retired API stays usable: a later call redials with the same URL and mutators, so a
// caller holding it keeps its original credential. The client is released again when
// that call finishes.
func (a *API) Retire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retired = true
	if a.inflight == 0 {
		a.closeLocked()
	}
}

func (a *API) acquire() (*Pipeline, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.stale {
		if a.dial == nil {
			return nil, ErrClosed
		}
		caller, err := a.dial()
		if err != nil {
			return nil, err
		}
		a.logger.Debug("XML-RPC client redialed", zap.Bool("retired", a.closed), zap.Bool("stale", a.stale))
		if !a.closed && a.closer != nil {
			_ = a.closer.Close()
		}
		a.use(caller)
		a.closed = false
		a.stale = false
	}
	a.inflight++
	return a.pipeline, nil
}

func (a *API) release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight--
	if a.retired && a.inflight == 0 {
		a.closeLocked()
	}
}

func (a *API) closeLocked() {
	if a.closed {
		return
	}
	a.closed = true
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.logger.Debug("Failed to close xml-rpc client", zap.Error(err))
		}
	}
	if a.transport != nil {
		a.transport.CloseIdleConnections()
	}
}

// deadlineTransport bounds every round trip, body read included. The XML-RPC codec
// builds requests without a context, so this is the only place a hung server is cut.
type deadlineTransport struct {
	base    http.RoundTripper
	timeout time.Duration
}

func (t *deadlineTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), t.timeout)
	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
