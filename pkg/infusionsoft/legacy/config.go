package ifslegacy

import (
	"fmt"
	"net/http"
	"os"

	"github.com/natserract/infusionsoft/pkg/config"
)

type Config struct {
	AppName    string
	PrivateKey string
	// URL overrides the endpoint derived from AppName.
	URL string
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

func LoadConfig() (*Config, error) {
	config.LoadEnv()

	cfg := &Config{
		AppName:    os.Getenv("IFS_APP_NAME"),
		PrivateKey: os.Getenv("IFS_PRIVATE_KEY"),
		URL:        os.Getenv("IFS_LEGACY_XMLRPC_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AppName == "" && c.URL == "" {
		return fmt.Errorf("IFS_APP_NAME is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("IFS_PRIVATE_KEY is required")
	}
	return nil
}

// Endpoint is the account's XML-RPC URL.
func (c *Config) Endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("https://%s.infusionsoft.com/api/xmlrpc", c.AppName)
}
