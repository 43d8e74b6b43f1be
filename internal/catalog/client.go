// Package catalog talks to the storefront API that owns products and stock.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/rocketshoes-cart/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultTimeout             = 5 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("catalog base url is required")

// Product is the full product record served by `GET products/{id}`.
type Product struct {
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// Stock is the availability snapshot served by `GET stock/{id}`.
type Stock struct {
	ProductID int `json:"id"`
	Amount    int `json:"amount"`
}

// Client wraps the product and stock endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a catalog client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// GetStock fetches the current stock record for productID.
func (c *Client) GetStock(ctx context.Context, productID int) (Stock, error) {
	var stock Stock
	if err := c.get(ctx, fmt.Sprintf("stock/%d", productID), "stock", &stock); err != nil {
		return Stock{}, err
	}
	if stock.ProductID == 0 {
		stock.ProductID = productID
	}
	return stock, nil
}

// GetProduct fetches the full product record for productID.
func (c *Client) GetProduct(ctx context.Context, productID int) (Product, error) {
	var product Product
	if err := c.get(ctx, fmt.Sprintf("products/%d", productID), "product", &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

func (c *Client) get(ctx context.Context, path, resource string, dest any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+resource+" request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+resource+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, resource+" not found")
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), resource+" request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+resource+" response")
	}
	return nil
}
