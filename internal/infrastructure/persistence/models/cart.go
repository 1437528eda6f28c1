package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/delivery/storefront/internal/domain/cart"
)

// CartModel stores one browser's cart as its JSON snapshot
type CartModel struct {
	BrowserID string `gorm:"primaryKey;size:64"`
	Data      string `gorm:"type:text;not null"`
	ExpiresAt int64  `gorm:"index;not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "storefront_carts"
}

// CartModelFromDomain encodes the cart
func CartModelFromDomain(browserID string, c *cart.Cart, expiresAt time.Time) (*CartModel, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return &CartModel{
		BrowserID: browserID,
		Data:      string(data),
		ExpiresAt: expiresAt.UnixMilli(),
	}, nil
}

// ToDomain decodes the stored cart
func (m *CartModel) ToDomain() (*cart.Cart, error) {
	c := &cart.Cart{}
	if err := json.Unmarshal([]byte(m.Data), c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// CheckoutLockModel is a submission hold, one per browser
type CheckoutLockModel struct {
	LockKey   string `gorm:"primaryKey;size:128"`
	ExpiresAt int64  `gorm:"index;not null"`
}

// TableName returns the table name for GORM
func (CheckoutLockModel) TableName() string {
	return "storefront_checkout_locks"
}
