package main

import (
	"context"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/natserract/infusionsoft/pkg/config"
	ifslegacy "github.com/natserract/infusionsoft/pkg/infusionsoft/legacy"
	ifsoauth2 "github.com/natserract/infusionsoft/pkg/infusionsoft/oauth2"
	"github.com/natserract/infusionsoft/pkg/tokenstore"
	"github.com/natserract/infusionsoft/pkg/tokenstore/postgres"
	"go.uber.org/zap"
)

// Opts with all cli commands and flags
type Opts struct {
	AuthorizeCmd AuthorizeCommand `command:"authorize" description:"print the OAuth2 authorization URL"`
	ExchangeCmd  ExchangeCommand  `command:"exchange" description:"exchange an authorization code and store the token"`
	RefreshCmd   RefreshCommand   `command:"refresh" description:"refresh the stored token"`
	CallCmd      CallCommand      `command:"call" description:"invoke a raw XML-RPC method"`
	ExportCmd    ExportCommand    `command:"export-contacts" description:"export contacts as JSON"`

	Store     string `long:"store" env:"IFS_TOKEN_STORE" choice:"file" choice:"postgres" default:"file" description:"token store"`
	TokenFile string `long:"token-file" env:"IFS_TOKEN_FILE" default:".infusionsoft-token.json" description:"token file for the file store"`
	Account   string `long:"account" env:"IFS_ACCOUNT" default:"default" description:"account key for the postgres store"`
	Legacy    bool   `long:"legacy" env:"IFS_LEGACY" description:"use the API key client instead of OAuth2"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

func main() {
	config.LoadEnv()

	var opts Opts
	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(command flags.Commander, args []string) error {
		logger, err := newLogger(opts.Dbg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		ctx := context.Background()
		store, closeStore, err := openStore(ctx, opts, logger)
		if err != nil {
			logger.Error("Failed to open token store", zap.Error(err))
			return err
		}
		defer closeStore()

		c := command.(commonOptionsCommander)
		c.SetCommon(CommonOpts{
			Logger: logger,
			Store:  store,
			Out:    os.Stdout,
			Legacy: opts.Legacy,
			NewOAuth2: func() (*ifsoauth2.Infusionsoft, error) {
				cfg, err := ifsoauth2.LoadConfig()
				if err != nil {
					return nil, err
				}
				return ifsoauth2.NewWithLogger(cfg, logger)
			},
			NewLegacy: func() (*ifslegacy.Infusionsoft, error) {
				cfg, err := ifslegacy.LoadConfig()
				if err != nil {
					return nil, err
				}
				return ifslegacy.NewWithLogger(cfg, logger)
			},
		})

		if err := c.Execute(args); err != nil {
			logger.Error("Command failed", zap.Error(err))
			return err
		}
		return nil
	}

	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func newLogger(dbg bool) (*zap.Logger, error) {
	if dbg {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(ctx context.Context, opts Opts, logger *zap.Logger) (tokenstore.Store, func(), error) {
	if opts.Store != "postgres" {
		return tokenstore.NewFileStore(opts.TokenFile, logger), func() {}, nil
	}

	dbCfg, err := postgres.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.New(ctx, dbCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewStore(db.Pool(), opts.Account, logger), db.Close, nil
}
