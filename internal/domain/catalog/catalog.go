// Package catalog describes restaurants and their menus as served by the
// restaurant service.
package catalog

import (
	"github.com/shopspring/decimal"
)

// Dish is one menu entry
type Dish struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// Restaurant is a restaurant with its menu
type Restaurant struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Cuisine string `json:"cuisine"`
	Address string `json:"address"`
	Dishes  []Dish `json:"dishes"`
}

// Dish returns the menu entry with the given id
func (r *Restaurant) Dish(id int64) (Dish, bool) {
	for _, d := range r.Dishes {
		if d.ID == id {
			return d, true
		}
	}
	return Dish{}, false
}

// Prices returns the current price of every dish on the menu
func (r *Restaurant) Prices() map[int64]decimal.Decimal {
	prices := make(map[int64]decimal.Decimal, len(r.Dishes))
	for _, d := range r.Dishes {
		prices[d.ID] = d.Price
	}
	return prices
}

// ListQuery filters the public restaurant listing
type ListQuery struct {
	Cuisine string
	Page    *int
}

// RestaurantInput is the editable part of a restaurant
type RestaurantInput struct {
	Name    string
	Cuisine string
	Address string
}

// DishInput is the editable part of a dish
type DishInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}
