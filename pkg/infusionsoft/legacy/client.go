// Package ifslegacy is the API-key client. Every call carries the account's private
// key as its first parameter; the key has no expiry.
package ifslegacy

import (
	"context"
	"fmt"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/services"
	ifsxml "github.com/natserract/infusionsoft/pkg/infusionsoft/xmlrpc"
	"go.uber.org/zap"
)

// Infusionsoft is the legacy client. The embedded catalog exposes every service.
type Infusionsoft struct {
	*services.Catalog

	config *Config
	xml    *ifsxml.API
	logger *zap.Logger
}

// New creates a legacy client with the default production logger
func New(cfg *Config) (*Infusionsoft, error) {
	logger, _ := zap.NewProduction()
	return NewWithLogger(cfg, logger)
}

// NewWithLogger creates a legacy client with a custom logger
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

	xml, err := ifsxml.New(ifsxml.Config{
		URL:       cfg.Endpoint(),
		Transport: cfg.Transport,
		Mutators:  []ifsxml.MethodCallMutator{ifsxml.PrivateKey(cfg.PrivateKey)},
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Legacy Infusionsoft client ready", zap.String("app", cfg.AppName))

	return &Infusionsoft{
		Catalog: services.NewCatalog(xml),
		config:  cfg,
		xml:     xml,
		logger:  logger,
	}, nil
}

// XML returns the underlying XML-RPC API.
func (i *Infusionsoft) XML() *ifsxml.API {
	return i.xml
}

// Request invokes a raw XML-RPC method. The private key is prepended to params.
func (i *Infusionsoft) Request(ctx context.Context, method string, params ...any) (any, error) {
	return i.xml.Request(ctx, method, params...)
}

// Close releases the transport once pending calls finish.
func (i *Infusionsoft) Close() {
	i.xml.Retire()
}
