package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/delivery/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository on a SQL table
type GormCartRepository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB, ttl time.Duration) *GormCartRepository {
	return &GormCartRepository{db: db, ttl: ttl, now: time.Now}
}

// Get returns the browser's cart, nil if none
func (r *GormCartRepository) Get(ctx context.Context, browserID string) (*cart.Cart, error) {
	var m models.CartModel
	err := r.db.WithContext(ctx).
		Where("browser_id = ? AND expires_at > ?", browserID, r.now().UnixMilli()).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return m.ToDomain()
}

// Save stores the cart and refreshes its deadline
func (r *GormCartRepository) Save(ctx context.Context, browserID string, c *cart.Cart) error {
	m, err := models.CartModelFromDomain(browserID, c, r.now().Add(r.ttl))
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "browser_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart
func (r *GormCartRepository) Delete(ctx context.Context, browserID string) error {
	err := r.db.WithContext(ctx).
		Where("browser_id = ?", browserID).
		Delete(&models.CartModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// PurgeExpired deletes carts past their deadline
func (r *GormCartRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now().UnixMilli()).
		Delete(&models.CartModel{})
	return result.RowsAffected, result.Error
}

var _ cart.Repository = (*GormCartRepository)(nil)
