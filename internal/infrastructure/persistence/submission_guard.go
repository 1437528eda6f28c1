package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/delivery/storefront/internal/domain/order"
	"github.com/delivery/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubmissionGuard implements order.SubmissionGuard with a lock table
type GormSubmissionGuard struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormSubmissionGuard creates a new GormSubmissionGuard
func NewGormSubmissionGuard(db *gorm.DB) *GormSubmissionGuard {
	return &GormSubmissionGuard{db: db, now: time.Now}
}

// Begin takes the hold for key, false if an unexpired hold exists.
// An expired hold is taken over with a conditional update.
func (g *GormSubmissionGuard) Begin(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := g.now()
	lock := &models.CheckoutLockModel{LockKey: key, ExpiresAt: now.Add(ttl).UnixMilli()}

	result := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(lock)
	if result.Error != nil {
		return false, fmt.Errorf("failed to take checkout hold: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	result = g.db.WithContext(ctx).
		Model(&models.CheckoutLockModel{}).
		Where("lock_key = ? AND expires_at <= ?", key, now.UnixMilli()).
		Update("expires_at", lock.ExpiresAt)
	if result.Error != nil {
		return false, fmt.Errorf("failed to take over checkout hold: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// End releases the hold for key
func (g *GormSubmissionGuard) End(ctx context.Context, key string) error {
	err := g.db.WithContext(ctx).
		Where("lock_key = ?", key).
		Delete(&models.CheckoutLockModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to release checkout hold: %w", err)
	}
	return nil
}

// PurgeExpired deletes lapsed holds
func (g *GormSubmissionGuard) PurgeExpired(ctx context.Context) (int64, error) {
	result := g.db.WithContext(ctx).
		Where("expires_at <= ?", g.now().UnixMilli()).
		Delete(&models.CheckoutLockModel{})
	return result.RowsAffected, result.Error
}

var _ order.SubmissionGuard = (*GormSubmissionGuard)(nil)
