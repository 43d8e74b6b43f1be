package cart

import (
	"github.com/shopspring/decimal"
)

const (
	OpAddProduct          = "add_product"
	OpRemoveProduct       = "remove_product"
	OpUpdateProductAmount = "update_product_amount"
)

// Toast texts. Stock and amount guards share MsgOutOfStock; every other
// failure uses the text of the operation the user triggered.
const (
	MsgOutOfStock   = "Requested quantity is out of stock"
	MsgAddFailed    = "Failed to add product"
	MsgRemoveFailed = "Failed to remove product"
	MsgUpdateFailed = "Failed to update product quantity"
)

// LineItem is one product in the cart. The JSON shape is the persisted blob
// format: the product record plus its cart amount.
type LineItem struct {
	ProductID int             `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Amount    int             `json:"amount"`
}

// UpdateProductAmount is the target quantity for one product.
type UpdateProductAmount struct {
	ProductID int `json:"product_id"`
	Amount    int `json:"amount"`
}

func indexOf(items []LineItem, productID int) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// amountsOf derives productID -> amount for quick lookups by the UI.
func amountsOf(items []LineItem) map[int]int {
	out := make(map[int]int, len(items))
	for _, item := range items {
		out[item.ProductID] = item.Amount
	}
	return out
}
