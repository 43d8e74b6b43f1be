package dto

// AddItemRequest is the body of POST /api/v1/cart/items.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
}

// UpdateAmountRequest is the body of PUT /api/v1/cart/items/{productID}.
// Non-positive amounts are accepted here and rejected by the cart itself.
type UpdateAmountRequest struct {
	Amount *int `json:"amount" validate:"required"`
}
