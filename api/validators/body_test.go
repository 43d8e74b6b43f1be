package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/rocketshoes-cart/pkg/errors"
)

type addItemRequest struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid", body: `{"product_id":3}`},
		{name: "missing field", body: `{}`, wantErr: true, field: "product_id"},
		{name: "negative", body: `{"product_id":-1}`, wantErr: true, field: "product_id"},
		{name: "unknown field", body: `{"product_id":3,"qty":2}`, wantErr: true},
		{name: "malformed", body: `{"product_id":`, wantErr: true},
		{name: "wrong type", body: `{"product_id":"3"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(tt.body))
			var dest addItemRequest
			err := DecodeJSONBody(req, &dest)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, 3, dest.ProductID)
				return
			}
			require.Error(t, err)
			assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
			if tt.field != "" {
				details, ok := pkgerrors.As(err).Details().(map[string]string)
				require.True(t, ok)
				assert.Contains(t, details, tt.field)
			}
		})
	}
}

func TestPositiveIntParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+value, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("productID", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	got, err := PositiveIntParam(withParam("12"), "productID")
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	for _, bad := range []string{"", "0", "-4", "abc", "1.5"} {
		_, err := PositiveIntParam(withParam(bad), "productID")
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "value %q", bad)
	}
}
