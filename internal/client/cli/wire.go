package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/smartpool/internal/analyzer"
	"github.com/dmitrijs2005/smartpool/internal/client/config"
	"github.com/dmitrijs2005/smartpool/internal/client/firestore"
	"github.com/dmitrijs2005/smartpool/internal/client/identity"
	"github.com/dmitrijs2005/smartpool/internal/client/localstore"
	"github.com/dmitrijs2005/smartpool/internal/client/services"
	"github.com/dmitrijs2005/smartpool/internal/i18n"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

// NewAppFromConfig builds the local store, remote clients, analyzer and
// services described by cfg and returns an App reading stdin.
func NewAppFromConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	path := cfg.StorePath
	if path == "" {
		var err error
		if path, err = localstore.DefaultPath(); err != nil {
			return nil, fmt.Errorf("store path: %w", err)
		}
	}
	store := localstore.New(path, log)
	log.Debug(ctx, "local store", "path", store.Path())

	remote := config.ResolveRemote(ctx, config.RemoteOptions{Prefs: store, Log: log})

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	fs := firestore.New(firestore.Config{
		BaseURL:    cfg.FirestoreURL,
		ProjectID:  remote.ProjectID,
		APIKey:     remote.APIKey,
		HTTPClient: httpClient,
	}, log)
	idp := identity.New(identity.Config{
		BaseURL:    cfg.IdentityURL,
		APIKey:     remote.APIKey,
		HTTPClient: httpClient,
	}, log)

	lang := i18n.NewCurrent(cfg.Language)
	an := analyzer.New(lang, analyzer.ColorClassifier{}, log)

	return NewApp(Options{
		Auth:     services.NewAuthService(idp, store, lang, log),
		Pools:    services.NewPoolService(store, fs, log),
		Analyses: services.NewAnalysisService(store, fs, an, log),
		Settings: services.NewSettingsService(store, log),
		Lang:     lang,
		Log:      log,
		SyncWait: cfg.RequestTimeout,
	}), nil
}
