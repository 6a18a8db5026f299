package ifsoauth2

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/natserract/infusionsoft/pkg/config"
	ifsrest "github.com/natserract/infusionsoft/pkg/infusionsoft/rest"
)

const (
	DefaultAuthURL   = "https://signin.infusionsoft.com/app/oauth/authorize"
	DefaultTokenURL  = "https://api.infusionsoft.com/token"
	DefaultXMLRPCURL = "https://api.infusionsoft.com/crm/xmlrpc/v1"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthURL     string
	TokenURL    string
	RESTBaseURL string
	XMLRPCURL   string

	// Transport is shared by the token endpoint, REST and XML-RPC clients.
	Transport http.RoundTripper
	// Now drives token expiry. Defaults to time.Now.
	Now func() time.Time
}

func LoadConfig() (*Config, error) {
	config.LoadEnv()

	cfg := &Config{
		ClientID:     os.Getenv("IFS_CLIENT_ID"),
		ClientSecret: os.Getenv("IFS_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("IFS_REDIRECT_URI"),
		AuthURL:      config.GetEnv("IFS_AUTH_URL", DefaultAuthURL),
		TokenURL:     config.GetEnv("IFS_TOKEN_URL", DefaultTokenURL),
		RESTBaseURL:  config.GetEnv("IFS_REST_BASE_URL", ifsrest.DefaultBaseURL),
		XMLRPCURL:    config.GetEnv("IFS_XMLRPC_URL", DefaultXMLRPCURL),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	return config.Required(
		[2]string{"IFS_CLIENT_ID", c.ClientID},
		[2]string{"IFS_CLIENT_SECRET", c.ClientSecret},
		[2]string{"IFS_REDIRECT_URI", c.RedirectURI},
	)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.AuthURL == "" {
		out.AuthURL = DefaultAuthURL
	}
	if out.TokenURL == "" {
		out.TokenURL = DefaultTokenURL
	}
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = ifsrest.DefaultBaseURL
	}
	if out.XMLRPCURL == "" {
		out.XMLRPCURL = DefaultXMLRPCURL
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return out
}

// xmlrpcURL embeds the access token in the query of the XML-RPC endpoint.
func xmlrpcURL(base, accessToken string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse xml-rpc url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", accessToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
