package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/matthieukhl/storefront/internal/api"
	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/database"
	"github.com/matthieukhl/storefront/internal/productform"
	"github.com/matthieukhl/storefront/internal/session"
	"go.uber.org/zap"
)

// app wires the client-side services shared by the commands.
type app struct {
	db      *database.DB
	client  *api.Client
	session *session.Store
	fetcher *catalog.Fetcher
	forms   *productform.Controller

	// listed is the catalog size seen by the last refresh, -1 before one ran
	listed int
}

func openApp(ctx context.Context) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client := api.NewClient(cfg.API, logger)
	sess, err := session.Open(ctx, db, client, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		db:      db,
		client:  client,
		session: sess,
		fetcher: catalog.NewFetcher(client, api.NewRetryPolicy(cfg.API.Retry), logger),
		listed:  -1,
	}
	a.forms = productform.NewController(client, sess, cfg.Catalog.Categories, logger,
		productform.WithRefresh(func(ctx context.Context) error {
			products, err := a.fetcher.FetchAll(ctx, sess.Token())
			if err != nil {
				return err
			}
			a.listed = len(products)
			logger.Debug("catalog refreshed", zap.Int("count", len(products)))
			return nil
		}))
	return a, nil
}

// reportCatalog prints the catalog size after a change.
func (a *app) reportCatalog(w io.Writer) {
	if a.listed >= 0 {
		fmt.Fprintf(w, "📦 Catalog now lists %d products\n", a.listed)
	}
}

func (a *app) Close() error {
	_ = a.session.Close()
	return a.db.Close()
}
