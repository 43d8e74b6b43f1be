package dto

import (
	cartsvc "github.com/angelmondragon/rocketshoes-cart/internal/cart"
	"github.com/angelmondragon/rocketshoes-cart/internal/notify"
	"github.com/shopspring/decimal"
)

type LineItem struct {
	ProductID int             `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Amount    int             `json:"amount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart is the cart view returned by every cart endpoint. Notifications is
// only ever non-empty on mutations.
type Cart struct {
	Items         []LineItem            `json:"items"`
	Amounts       map[int]int           `json:"amounts"`
	Notifications []notify.Notification `json:"notifications"`
}

// NewCart builds the view from one snapshot so items and amounts agree.
func NewCart(items []cartsvc.LineItem, notifications []notify.Notification) Cart {
	if notifications == nil {
		notifications = []notify.Notification{}
	}
	out := Cart{
		Items:         make([]LineItem, 0, len(items)),
		Amounts:       make(map[int]int, len(items)),
		Notifications: notifications,
	}
	for _, item := range items {
		out.Items = append(out.Items, LineItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Image:     item.Image,
			Amount:    item.Amount,
			Subtotal:  item.Price.Mul(decimal.NewFromInt(int64(item.Amount))),
		})
		out.Amounts[item.ProductID] = item.Amount
	}
	return out
}
