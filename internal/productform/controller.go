package productform

import (
	"context"
	"errors"
	"fmt"

	"github.com/matthieukhl/storefront/internal/models"
	"go.uber.org/zap"
)

// Writer is the part of the API that mutates products.
type Writer interface {
	CreateProduct(ctx context.Context, token string, p models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, token string, p models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, token, id string) error
}

// TokenSource hands out the bearer token for admin calls.
type TokenSource interface {
	AdminToken() (string, error)
}

// Controller submits product changes on behalf of an admin session.
type Controller struct {
	writer     Writer
	session    TokenSource
	categories []string
	refresh    func(ctx context.Context) error
	logger     *zap.Logger
}

type Option func(*Controller)

// WithRefresh sets the catalog re-fetch run after every successful change.
func WithRefresh(fn func(ctx context.Context) error) Option {
	return func(c *Controller) { c.refresh = fn }
}

func NewController(writer Writer, session TokenSource, categories []string, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		writer:     writer,
		session:    session,
		categories: categories,
		logger:     logger.Named("productform"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories is the productType set the controller validates against.
func (c *Controller) Categories() []string { return c.categories }

// Save validates f and creates it when it has no ID, otherwise updates it.
// It does not touch any dialog and does not refresh.
func (c *Controller) Save(ctx context.Context, f Form) (*models.Product, error) {
	if errs := Validate(f, c.categories); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	token, err := c.session.AdminToken()
	if err != nil {
		return nil, err
	}

	p := f.Product()
	var saved *models.Product
	if f.IsEdit() {
		saved, err = c.writer.UpdateProduct(ctx, token, p)
	} else {
		saved, err = c.writer.CreateProduct(ctx, token, p)
	}
	if err != nil {
		c.logger.Warn("failed to save product", zap.String("id", f.ID), zap.Error(err))
		return nil, err
	}
	c.logger.Info("product saved", zap.String("id", saved.ID), zap.Bool("update", f.IsEdit()))
	return saved, nil
}

// Submit runs the dialog through Submitting: on success the dialog closes
// and the catalog is refreshed, on failure it reopens with the error.
func (c *Controller) Submit(ctx context.Context, d *Dialog) (*models.Product, error) {
	f, err := d.Begin(c.categories)
	if err != nil {
		return nil, err
	}
	saved, err := c.Save(ctx, f)
	d.Finish(err)
	if err != nil {
		return nil, err
	}
	return saved, c.Refresh(ctx)
}

// Remove deletes the product without refreshing.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("product id is required")
	}
	token, err := c.session.AdminToken()
	if err != nil {
		return err
	}
	if err := c.writer.DeleteProduct(ctx, token, id); err != nil {
		c.logger.Warn("failed to delete product", zap.String("id", id), zap.Error(err))
		return err
	}
	c.logger.Info("product deleted", zap.String("id", id))
	return nil
}

// Delete removes the product and refreshes the catalog.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.Remove(ctx, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Refresh runs the configured re-fetch, if any.
func (c *Controller) Refresh(ctx context.Context) error {
	if c.refresh == nil {
		return nil
	}
	if err := c.refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh catalog: %w", err)
	}
	return nil
}
