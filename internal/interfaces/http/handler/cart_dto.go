package handler

import "github.com/delivery/storefront/internal/domain/catalog"

// RestaurantListQuery filters the restaurant listing
type RestaurantListQuery struct {
	Cuisine string `form:"cuisine"`
	Page    *int   `form:"page" binding:"omitempty,gte=0"`
}

// ToDomain converts the query to the catalog filter
func (q RestaurantListQuery) ToDomain() catalog.ListQuery {
	return catalog.ListQuery{Cuisine: q.Cuisine, Page: q.Page}
}

// AddToCartRequest puts one more of a dish in the cart
type AddToCartRequest struct {
	DishID int64 `json:"dishId" binding:"required,gt=0"`
}

// SetQuantityRequest sets a cart line's quantity; zero removes the line
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

// CheckoutRequest places the cart as an order. The method is checked
// against the accepted payment methods by the checkout itself.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}
