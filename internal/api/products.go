package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/matthieukhl/storefront/internal/models"
)

const productsPath = "/api/products"

func productPath(id string) string {
	return productsPath + "/" + url.PathEscape(id)
}

// ListProducts fetches the complete catalog in server order. token is
// optional; the admin screens send it.
func (c *Client) ListProducts(ctx context.Context, token string) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, productsPath, token, nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodGet, productPath(id), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct posts a new product. The identifier of p is ignored.
func (c *Client) CreateProduct(ctx context.Context, token string, p models.Product) (*models.Product, error) {
	p.ID = ""
	var created models.Product
	if err := c.do(ctx, http.MethodPost, productsPath, token, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces the product identified by p.ID.
func (c *Client) UpdateProduct(ctx context.Context, token string, p models.Product) (*models.Product, error) {
	var updated models.Product
	if err := c.do(ctx, http.MethodPut, productPath(p.ID), token, p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes the product with the given id.
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, productPath(id), token, nil, nil)
}
