// Package ifsoauth2 is the OAuth2 client. It owns the held token, exchanges and
// refreshes it at the token endpoint, and rebuilds the XML-RPC and REST transports
// whenever the token is replaced.
//
// Calls are gated on the held token: with no token, or once it has expired, every
// call fails with apierror.ErrTokenExpired without touching the network.
package ifsoauth2

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"

	httpclient "github.com/natserract/infusionsoft/pkg/http"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
	ifsrest "github.com/natserract/infusionsoft/pkg/infusionsoft/rest"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/services"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/token"
	ifsxml "github.com/natserract/infusionsoft/pkg/infusionsoft/xmlrpc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Infusionsoft is the OAuth2 client. The embedded catalog always calls through the
// transport built for the currently held token.
type Infusionsoft struct {
	*services.Catalog

	config     Config
	oauth      *oauth2.Config
	httpClient *httpclient.Client
	logger     *zap.Logger

	session atomic.Pointer[session]
}

// session is the token together with the transports that embed it.
type session struct {
	token *token.Token
	xml   *ifsxml.API
	rest  *ifsrest.API
}

// New creates an OAuth2 client with the default production logger
func New(cfg *Config) (*Infusionsoft, error) {
	logger, _ := zap.NewProduction()
	return NewWithLogger(cfg, logger)
}

// NewWithLogger creates an OAuth2 client with a custom logger. The client starts
// with no token held.
func NewWithLogger(cfg *Config, logger *zap.Logger) (*Infusionsoft, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cfg.withDefaults()
	i := &Infusionsoft{
		config: c,
		oauth: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURI,
			Scopes:       []string{"full"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   c.AuthURL,
				TokenURL:  c.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpclient.NewClientWithConfig(httpclient.ClientConfig{Transport: c.Transport}, logger),
		logger:     logger,
	}
	i.Catalog = services.NewCatalog(i)

	if err := i.SetToken(nil); err != nil {
		return nil, err
	}
	return i, nil
}

// AuthorizationURL is where the user agent is sent to grant access. state is
// echoed back to the redirect URI.
func (i *Infusionsoft) AuthorizationURL(state string) string {
	return i.oauth.AuthCodeURL(state)
}

// RequestAccessToken exchanges an authorization code for a token and holds it.
func (i *Infusionsoft) RequestAccessToken(ctx context.Context, code string) (*token.Token, error) {
	if code == "" {
		return nil, apierror.Missing("String")
	}

	form := url.Values{
		"client_id":     {i.config.ClientID},
		"client_secret": {i.config.ClientSecret},
		"redirect_uri":  {i.config.RedirectURI},
		"code":          {code},
		"grant_type":    {"authorization_code"},
	}

	tok, err := i.postToken(ctx, form, nil)
	if err != nil {
		i.logger.Error("Failed to exchange authorization code", zap.Error(err))
		return nil, err
	}
	if err := i.SetToken(tok); err != nil {
		return nil, err
	}

	i.logger.Info("Exchanged authorization code for token", zap.Time("expires_at", tok.ExpiresAt()))
	return tok, nil
}

// RefreshToken trades the held refresh token for a new token and holds it. An
// expired token can still be refreshed.
func (i *Infusionsoft) RefreshToken(ctx context.Context) (*token.Token, error) {
	held := i.Token()
	if held == nil || held.RefreshToken() == "" {
		return nil, apierror.Missing("RefreshToken")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {held.RefreshToken()},
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(i.config.ClientID + ":" + i.config.ClientSecret))
	headers := map[string]string{"Authorization": "Basic " + credentials}

	tok, err := i.postToken(ctx, form, headers)
	if err != nil {
		i.logger.Error("Failed to refresh token", zap.Error(err))
		return nil, err
	}
	if err := i.SetToken(tok); err != nil {
		return nil, err
	}

	i.logger.Info("Refreshed token", zap.Time("expires_at", tok.ExpiresAt()))
	return tok, nil
}

func (i *Infusionsoft) postToken(ctx context.Context, form url.Values, headers map[string]string) (*token.Token, error) {
	h := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range headers {
		h[k] = v
	}

	resp, err := i.httpClient.Post(ctx, i.config.TokenURL, h, form)
	if err != nil {
		return nil, ifsrest.Normalize(http.MethodPost, i.config.TokenURL, err)
	}

	tok, err := token.ParseResponse(resp.Body, i.config.Now)
	if err != nil {
		return nil, &apierror.RESTError{
			Method: http.MethodPost,
			URL:    i.config.TokenURL,
			Body:   resp.Body,
			Err:    err,
		}
	}
	return tok, nil
}

// Token returns the held token, or nil.
func (i *Infusionsoft) Token() *token.Token {
	if s := i.session.Load(); s != nil {
		return s.token
	}
	return nil
}

// SetToken replaces the held token. Both transports are rebuilt for the new access
// token. Calls in flight, and callers still holding the previous XML(), keep using
// the previous token. A nil token returns the client to the unauthenticated state.
func (i *Infusionsoft) SetToken(tok *token.Token) error {
	next, err := i.newSession(tok)
	if err != nil {
		return err
	}

	if prev := i.session.Swap(next); prev != nil {
		prev.xml.Retire()
		i.logger.Debug("Token replaced", zap.Bool("held", tok != nil))
	}
	return nil
}

func (i *Infusionsoft) newSession(tok *token.Token) (*session, error) {
	accessToken := ""
	if tok != nil {
		accessToken = tok.AccessToken()
	}
	endpoint, err := xmlrpcURL(i.config.XMLRPCURL, accessToken)
	if err != nil {
		return nil, err
	}

	held := func() *token.Token { return tok }
	xml, err := ifsxml.New(ifsxml.Config{
		URL:       endpoint,
		Transport: i.config.Transport,
		Mutators:  []ifsxml.MethodCallMutator{ifsxml.TokenGate(held, i.config.Now)},
	}, i.logger)
	if err != nil {
		return nil, err
	}

	rest := ifsrest.New(ifsrest.Config{
		BaseURL:   i.config.RESTBaseURL,
		Transport: i.config.Transport,
		Now:       i.config.Now,
	}, tok, i.logger)

	return &session{token: tok, xml: xml, rest: rest}, nil
}

// XML returns the XML-RPC API bound to the held token.
func (i *Infusionsoft) XML() *ifsxml.API {
	return i.session.Load().xml
}

// REST returns the REST API bound to the held token.
func (i *Infusionsoft) REST() *ifsrest.API {
	return i.session.Load().rest
}

// Call dispatches through the current transport. It lets the client serve as the
// services.Requester for its own catalog.
func (i *Infusionsoft) Call(ctx context.Context, method string, params []any, reply any) error {
	return i.XML().Call(ctx, method, params, reply)
}

// Request invokes a raw XML-RPC method.
func (i *Infusionsoft) Request(ctx context.Context, method string, params ...any) (any, error) {
	return i.XML().Request(ctx, method, params...)
}

// Close releases the current transport once pending calls finish.
func (i *Infusionsoft) Close() {
	if s := i.session.Load(); s != nil {
		s.xml.Retire()
	}
}
