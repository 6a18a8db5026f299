// Package ifsrest is the OAuth2 REST transport. Every request carries the access
// token as a query parameter and is rejected locally once that token has expired.
package ifsrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	httpclient "github.com/natserract/infusionsoft/pkg/http"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/token"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.infusionsoft.com/crm/rest/v1"

type Config struct {
	BaseURL   string
	Transport http.RoundTripper
	Timeout   time.Duration
	// MaxTries bounds attempts on network and 5xx failures. Zero means no retry.
	MaxTries uint
	// Now is used by the expiry gate. Defaults to time.Now.
	Now func() time.Time
}

// API is bound to one token. Build a new API when the token is replaced.
type API struct {
	client *httpclient.Client
	logger *zap.Logger
}

func New(cfg Config, tok *token.Token, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var query map[string]string
	if tok != nil {
		query = map[string]string{"access_token": tok.AccessToken()}
	}

	client := httpclient.NewClientWithConfig(httpclient.ClientConfig{
		BaseURL:   baseURL,
		Query:     query,
		Timeout:   cfg.Timeout,
		Transport: cfg.Transport,
		MaxTries:  cfg.MaxTries,
	}, logger)
	client.UseRequest(ExpiryGate(tok, cfg.Now))

	return &API{client: client, logger: logger}
}

// ExpiryGate rejects every request while tok is nil or expired.
func ExpiryGate(tok *token.Token, now func() time.Time) httpclient.RequestInterceptor {
	if now == nil {
		now = time.Now
	}
	return func(*http.Request) error {
		if tok == nil || tok.IsExpiredAt(now()) {
			return apierror.TokenExpired()
		}
		return nil
	}
}

// Request sends body as JSON to path, resolved against the base URL.
func (a *API) Request(ctx context.Context, method, path string, body any) (*httpclient.Response, error) {
	resp, err := a.client.Do(httpclient.RequestOptions{
		Method:  method,
		URL:     path,
		Body:    body,
		Context: ctx,
	})
	if err != nil {
		return nil, Normalize(method, path, err)
	}
	return resp, nil
}

func (a *API) Get(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := a.client.Do(httpclient.RequestOptions{
		Method:  http.MethodGet,
		URL:     path,
		Query:   query,
		Context: ctx,
	})
	if err != nil {
		return Normalize(http.MethodGet, path, err)
	}
	return decode(http.MethodGet, path, resp, out)
}

func (a *API) Post(ctx context.Context, path string, body, out any) error {
	return a.send(ctx, http.MethodPost, path, body, out)
}

func (a *API) Put(ctx context.Context, path string, body, out any) error {
	return a.send(ctx, http.MethodPut, path, body, out)
}

func (a *API) Patch(ctx context.Context, path string, body, out any) error {
	return a.send(ctx, http.MethodPatch, path, body, out)
}

func (a *API) Delete(ctx context.Context, path string) error {
	_, err := a.Request(ctx, http.MethodDelete, path, nil)
	return err
}

func (a *API) send(ctx context.Context, method, path string, body, out any) error {
	resp, err := a.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decode(method, path, resp, out)
}

func decode(method, path string, resp *httpclient.Response, out any) error {
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &apierror.RESTError{
			Method: method,
			URL:    path,
			Body:   resp.Body,
			Err:    fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// Normalize maps HTTP transport failures onto *apierror.RESTError. Errors already in
// the taxonomy, such as an expiry rejection, and unrecognized failures are returned
// unchanged.
func Normalize(method, path string, err error) error {
	if err == nil || errors.Is(err, apierror.ErrSDK) {
		return err
	}

	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		return &apierror.RESTError{
			Method:     statusErr.Method,
			URL:        statusErr.URL,
			StatusCode: statusErr.StatusCode,
			Body:       statusErr.Body,
			Err:        statusErr,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := &url.Error{Op: urlErr.Op, URL: httpclient.RedactURL(urlErr.URL), Err: urlErr.Err}
		return &apierror.RESTError{
			Method: method,
			URL:    redacted.URL,
			Err:    redacted,
		}
	}

	return err
}
