package handler

import (
	"github.com/delivery/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ConfirmQuery carries the explicit confirmation of a destructive action
type ConfirmQuery struct {
	Confirm bool `form:"confirm"`
}

// OrderStatusRequest moves an order to another status
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderStatusResponse is the status an order was moved to
type OrderStatusResponse struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// RestaurantRequest creates or replaces a restaurant
type RestaurantRequest struct {
	Name    string `json:"name" binding:"required,min=3,max=20"`
	Cuisine string `json:"cuisine" binding:"required,min=3,max=20"`
	Address string `json:"address" binding:"required,min=10,max=50"`
}

// ToDomain converts the request to the catalog input
func (r RestaurantRequest) ToDomain() catalog.RestaurantInput {
	return catalog.RestaurantInput{
		Name:    r.Name,
		Cuisine: r.Cuisine,
		Address: r.Address,
	}
}

// DishRequest creates or replaces a dish. The price must be positive.
type DishRequest struct {
	Name        string           `json:"name" binding:"required,min=3,max=20"`
	Description string           `json:"description" binding:"required,min=10,max=50"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	ImageURL    string           `json:"imageUrl" binding:"required,url"`
}

// ToDomain converts the request to the catalog input
func (r DishRequest) ToDomain() catalog.DishInput {
	return catalog.DishInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		ImageURL:    r.ImageURL,
	}
}
