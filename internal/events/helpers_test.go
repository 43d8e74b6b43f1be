package events

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/rocketshoes-cart/internal/cart"
	"github.com/angelmondragon/rocketshoes-cart/internal/catalog"
	"github.com/angelmondragon/rocketshoes-cart/internal/notify"
	"github.com/angelmondragon/rocketshoes-cart/internal/persistence"
)

type plentifulCatalog struct{}

func (plentifulCatalog) GetStock(_ context.Context, productID int) (catalog.Stock, error) {
	return catalog.Stock{ProductID: productID, Amount: 1000}, nil
}

func (plentifulCatalog) GetProduct(_ context.Context, productID int) (catalog.Product, error) {
	return catalog.Product{ID: productID, Title: "Tênis", Price: decimal.RequireFromString("99.9")}, nil
}

func newStoreForEvents(t *testing.T) *cart.Store {
	t.Helper()
	store, err := cart.NewStore(context.Background(), cart.Params{
		Catalog:  plentifulCatalog{},
		Blobs:    persistence.NewMemoryStore(),
		Notifier: notify.NewDispatcher(nil),
	})
	require.NoError(t, err)
	return store
}
