package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	ifslegacy "github.com/natserract/infusionsoft/pkg/infusionsoft/legacy"
	ifsoauth2 "github.com/natserract/infusionsoft/pkg/infusionsoft/oauth2"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/services"
	"github.com/natserract/infusionsoft/pkg/tokenstore"
	"go.uber.org/zap"
)

// CommonOpts are shared by every command. The client factories are only invoked by
// commands that need them.
type CommonOpts struct {
	Logger    *zap.Logger
	Store     tokenstore.Store
	Out       io.Writer
	Legacy    bool
	NewOAuth2 func() (*ifsoauth2.Infusionsoft, error)
	NewLegacy func() (*ifslegacy.Infusionsoft, error)
}

type commonOptionsCommander interface {
	SetCommon(commonOpts CommonOpts)
	Execute(args []string) error
}

// SetCommon satisfies commonOptionsCommander for every command embedding CommonOpts.
func (c *CommonOpts) SetCommon(commonOpts CommonOpts) {
	*c = commonOpts
}

// remote is what call and export-contacts need from either client.
type remote interface {
	Request(ctx context.Context, method string, params ...any) (any, error)
	Close()
}

type remoteClient struct {
	remote
	catalog *services.Catalog
}

// client returns the legacy client or an OAuth2 client holding a usable token. An
// expired stored token is refreshed and saved before use.
func (c *CommonOpts) client(ctx context.Context) (*remoteClient, error) {
	if c.Legacy {
		legacy, err := c.NewLegacy()
		if err != nil {
			return nil, err
		}
		return &remoteClient{remote: legacy, catalog: legacy.Catalog}, nil
	}

	client, err := c.NewOAuth2()
	if err != nil {
		return nil, err
	}
	tok, err := c.Store.Load(ctx)
	if err != nil {
		client.Close()
		if errors.Is(err, tokenstore.ErrNotFound) {
			return nil, fmt.Errorf("no stored token, run exchange first: %w", err)
		}
		return nil, err
	}
	if err := client.SetToken(tok); err != nil {
		client.Close()
		return nil, err
	}

	if tok.IsExpired() {
		c.Logger.Info("Stored token expired, refreshing", zap.Time("expires_at", tok.ExpiresAt()))
		fresh, err := client.RefreshToken(ctx)
		if err != nil {
			client.Close()
			return nil, err
		}
		if err := c.Store.Save(ctx, fresh); err != nil {
			client.Close()
			return nil, err
		}
	}
	return &remoteClient{remote: client, catalog: client.Catalog}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// AuthorizeCommand prints the URL a user visits to grant access.
type AuthorizeCommand struct {
	State string `long:"state" description:"opaque value echoed back to the redirect URI"`
	CommonOpts
}

func (ac *AuthorizeCommand) Execute(_ []string) error {
	client, err := ac.NewOAuth2()
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = fmt.Fprintln(ac.Out, client.AuthorizationURL(ac.State))
	return err
}

// ExchangeCommand trades an authorization code for a token and stores it.
type ExchangeCommand struct {
	Code    string        `long:"code" required:"true" description:"authorization code from the redirect"`
	Timeout time.Duration `long:"timeout" default:"30s" description:"request timeout"`
	CommonOpts
}

func (ec *ExchangeCommand) Execute(_ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), ec.Timeout)
	defer cancel()

	client, err := ec.NewOAuth2()
	if err != nil {
		return err
	}
	defer client.Close()

	tok, err := client.RequestAccessToken(ctx, ec.Code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}
	if err := ec.Store.Save(ctx, tok); err != nil {
		return err
	}

	_, err = fmt.Fprintf(ec.Out, "token stored, expires at %s\n", tok.ExpiresAt().Format(time.RFC3339))
	return err
}

// RefreshCommand refreshes the stored token regardless of its expiry.
type RefreshCommand struct {
	Timeout time.Duration `long:"timeout" default:"30s" description:"request timeout"`
	CommonOpts
}

func (rc *RefreshCommand) Execute(_ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rc.Timeout)
	defer cancel()

	tok, err := rc.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	client, err := rc.NewOAuth2()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.SetToken(tok); err != nil {
		return err
	}
	fresh, err := client.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	if err := rc.Store.Save(ctx, fresh); err != nil {
		return err
	}

	_, err = fmt.Fprintf(rc.Out, "token refreshed, expires at %s\n", fresh.ExpiresAt().Format(time.RFC3339))
	return err
}

// CallCommand invokes one XML-RPC method and prints the decoded result as JSON.
// Each --param is decoded as JSON when it parses, and sent as a string otherwise.
type CallCommand struct {
	Method  string        `long:"method" required:"true" description:"remote method, e.g. DataService.echo"`
	Params  []string      `long:"param" description:"method parameter, repeatable"`
	Timeout time.Duration `long:"timeout" default:"1m" description:"call timeout"`
	CommonOpts
}

func (cc *CallCommand) Execute(_ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cc.Timeout)
	defer cancel()

	client, err := cc.client(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	params := make([]any, len(cc.Params))
	for i, raw := range cc.Params {
		params[i] = parseParam(raw)
	}

	cc.Logger.Debug("Calling method", zap.String("method", cc.Method), zap.Int("params", len(params)))
	result, err := client.Request(ctx, cc.Method, params...)
	if err != nil {
		return err
	}
	return writeJSON(cc.Out, result)
}

// parseParam keeps whole numbers as ints so they encode as XML-RPC integers.
func parseParam(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return normalizeJSON(v)
}

func normalizeJSON(v any) any {
	switch t := v.(type) {
	case float64:
		if t == float64(int(t)) {
			return int(t)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalizeJSON(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeJSON(t[k])
		}
		return t
	default:
		return v
	}
}
