package cart

import (
	"context"
	"net/http"

	"github.com/angelmondragon/rocketshoes-cart/api/controllers/cart/dto"
	"github.com/angelmondragon/rocketshoes-cart/api/responses"
	"github.com/angelmondragon/rocketshoes-cart/api/validators"
	cartsvc "github.com/angelmondragon/rocketshoes-cart/internal/cart"
	"github.com/angelmondragon/rocketshoes-cart/internal/notify"
	pkgerrors "github.com/angelmondragon/rocketshoes-cart/pkg/errors"
	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
)

const productIDParam = "productID"

// Store is the cart surface the HTTP layer drives.
type Store interface {
	Snapshot() []cartsvc.LineItem
	Amounts() map[int]int
	AddProduct(ctx context.Context, productID int) []cartsvc.LineItem
	RemoveProduct(ctx context.Context, productID int) []cartsvc.LineItem
	UpdateProductAmount(ctx context.Context, in cartsvc.UpdateProductAmount) []cartsvc.LineItem
}

// CartFetch returns the current cart.
func CartFetch(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}
		responses.WriteSuccess(w, dto.NewCart(store.Snapshot(), nil))
	}
}

// CartAmounts returns only productID -> amount.
func CartAmounts(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}
		responses.WriteSuccess(w, store.Amounts())
	}
}

// CartAddItem adds one unit of a product.
func CartAddItem(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var payload dto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mutate(w, r, func(ctx context.Context) []cartsvc.LineItem {
			return store.AddProduct(ctx, payload.ProductID)
		})
	}
}

// CartUpdateItem sets the amount of a product already in the cart.
func CartUpdateItem(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		productID, err := validators.PositiveIntParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dto.UpdateAmountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mutate(w, r, func(ctx context.Context) []cartsvc.LineItem {
			return store.UpdateProductAmount(ctx, cartsvc.UpdateProductAmount{ProductID: productID, Amount: *payload.Amount})
		})
	}
}

// CartRemoveItem drops a product from the cart.
func CartRemoveItem(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		productID, err := validators.PositiveIntParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mutate(w, r, func(ctx context.Context) []cartsvc.LineItem {
			return store.RemoveProduct(ctx, productID)
		})
	}
}

// mutate runs op with a toast collector attached and answers 200 with the
// cart op left behind. Cart failures reach the client only as notifications.
func mutate(w http.ResponseWriter, r *http.Request, op func(context.Context) []cartsvc.LineItem) {
	ctx, collector := notify.WithCollector(r.Context())
	items := op(ctx)
	responses.WriteSuccess(w, dto.NewCart(items, collector.Notifications()))
}
