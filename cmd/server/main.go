package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/arencloud/chione/internal/api"
	"github.com/arencloud/chione/internal/config"
	"github.com/arencloud/chione/internal/db"
	"github.com/arencloud/chione/internal/glacier"
	"github.com/arencloud/chione/internal/inventory"
	"github.com/arencloud/chione/internal/logging"
	"github.com/arencloud/chione/internal/middleware"
	"github.com/arencloud/chione/internal/models"
	"github.com/arencloud/chione/internal/secret"
	"github.com/arencloud/chione/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env)

	gdb, err := db.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init db", "error", err)
	}
	sealer, err := secret.NewSealer(cfg.SecretKey)
	if err != nil {
		logger.Fatal("invalid SECRET_KEY", "error", err)
	}

	accounts := store.NewAccountStore(gdb, sealer)
	seedAccount(context.Background(), cfg, accounts, logger)

	providers := inventory.ProviderSourceFunc(func(ctx context.Context) (inventory.Provider, error) {
		ac, err := accounts.Current(ctx)
		if err != nil {
			return nil, err
		}
		c, err := glacier.NewFromAccount(*ac, cfg.Account.Endpoint)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	verify := func(ctx context.Context, ac models.AccountConfig) error {
		c, err := glacier.NewFromAccount(ac, cfg.Account.Endpoint)
		if err != nil {
			return err
		}
		_, err = c.ListVaults(ctx)
		return err
	}

	svc := inventory.NewService(store.NewVaultStore(gdb), providers, logger)
	r := api.Router(logger, svc, accounts, verify)

	srv := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           middleware.Recoverer(r, logger),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // inventory downloads can be large
		MaxHeaderBytes:    1 << 20,
	}
	logger.Info("server starting", "addr", srv.Addr, "db", cfg.DBDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}

// seedAccount stores the environment's credentials when no account is saved yet.
func seedAccount(ctx context.Context, cfg *config.Config, accounts *store.AccountStore, logger logging.Logger) {
	if !cfg.Account.Complete() {
		return
	}
	_, err := accounts.Save(ctx, models.AccountConfig{
		Account:     cfg.Account.ID,
		AccessKey:   cfg.Account.AccessKey,
		SecretKey:   cfg.Account.SecretKey,
		Region:      cfg.Account.Region,
		SNSTopicARN: cfg.Account.SNSTopicARN,
	}, false)
	switch {
	case errors.Is(err, store.ErrAlreadyConfigured):
		logger.Debug("account already saved, ignoring environment credentials")
	case err != nil:
		logger.Fatal("failed to seed account", "error", err)
	default:
		logger.Info("account seeded from environment", "account", cfg.Account.ID, "region", cfg.Account.Region)
	}
}
