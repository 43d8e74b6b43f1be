package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/rocketshoes-cart/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("http://catalog.test/", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGetStock(t *testing.T) {
	var capturedURL string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"id":3,"amount":2}`), nil
	})

	stock, err := client.GetStock(context.Background(), 3)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if capturedURL != "http://catalog.test/stock/3" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if stock.ProductID != 3 || stock.Amount != 2 {
		t.Fatalf("unexpected stock %+v", stock)
	}
}

func TestGetStockDefaultsProductID(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"amount":5}`), nil
	})

	stock, err := client.GetStock(context.Background(), 9)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if stock.ProductID != 9 {
		t.Fatalf("expected product id to default to the requested id, got %d", stock.ProductID)
	}
}

func TestGetProduct(t *testing.T) {
	var capturedURL string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"https://cdn.test/1.jpg"}`), nil
	})

	product, err := client.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if capturedURL != "http://catalog.test/products/1" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if product.Title != "Tênis de Caminhada Leve Confortável" || product.Price.String() != "179.9" {
		t.Fatalf("unexpected product %+v", product)
	}
}

func TestLookupErrorsAreTyped(t *testing.T) {
	tests := []struct {
		name string
		rt   roundTripFunc
		code pkgerrors.Code
	}{
		{
			name: "not found",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusNotFound, `{}`), nil
			},
			code: pkgerrors.CodeNotFound,
		},
		{
			name: "server error",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadGateway, `upstream down`), nil
			},
			code: pkgerrors.CodeDependency,
		},
		{
			name: "transport error",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			code: pkgerrors.CodeDependency,
		},
		{
			name: "malformed body",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"amount":`), nil
			},
			code: pkgerrors.CodeDependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.rt)
			_, err := client.GetStock(context.Background(), 1)
			if got := pkgerrors.CodeOf(err); got != tt.code {
				t.Fatalf("expected %s, got %s (%v)", tt.code, got, err)
			}
		})
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestNilClient(t *testing.T) {
	var client *Client
	if _, err := client.GetProduct(context.Background(), 1); pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error from nil client, got %v", err)
	}
}
