package catalog

import (
	"context"
	"fmt"

	"github.com/matthieukhl/storefront/internal/api"
	"github.com/matthieukhl/storefront/internal/models"
	"go.uber.org/zap"
)

// Lister is the part of the API the fetcher needs.
type Lister interface {
	ListProducts(ctx context.Context, token string) ([]models.Product, error)
}

// Fetcher retrieves the complete product collection. Every call is a full
// re-fetch; nothing is cached between calls.
type Fetcher struct {
	lister Lister
	policy api.RetryPolicy
	logger *zap.Logger
}

func NewFetcher(lister Lister, policy api.RetryPolicy, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{lister: lister, policy: policy, logger: logger.Named("catalog")}
}

// FetchAll returns the products in server order. Network and server
// failures are retried with backoff; anything else is returned at once.
// token may be empty; the admin screens send it.
func (f *Fetcher) FetchAll(ctx context.Context, token string) ([]models.Product, error) {
	var products []models.Product
	err := f.policy.Do(ctx, f.logger, "GET /api/products", func(ctx context.Context) error {
		var err error
		products, err = f.lister.ListProducts(ctx, token)
		return err
	})
	if err != nil {
		f.logger.Warn("failed to fetch catalog", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	f.logger.Debug("catalog fetched", zap.Int("count", len(products)))
	return products, nil
}
