package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxTakeAttempts bounds the compare-and-swap retries of a take
const maxTakeAttempts = 3

// GormSessionStore implements session.Store on a SQL table.
// Rows idle for longer than ttl are treated as absent.
type GormSessionStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewGormSessionStore creates a new GormSessionStore
func NewGormSessionStore(db *gorm.DB, ttl time.Duration) *GormSessionStore {
	return &GormSessionStore{db: db, ttl: ttl, now: time.Now}
}

func (s *GormSessionStore) deadline() int64 {
	return s.now().Add(s.ttl).UnixMilli()
}

// live scopes a query to the browser's unexpired row
func (s *GormSessionStore) live(ctx context.Context, id string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("browser_id = ? AND expires_at > ?", id, s.now().UnixMilli())
}

// dropStale deletes an idle-expired row so the next write starts from empty
func (s *GormSessionStore) dropStale(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Where("browser_id = ? AND expires_at <= ?", id, s.now().UnixMilli()).
		Delete(&models.SessionModel{}).Error
}

// Load returns the record for the browser and refreshes its idle deadline
func (s *GormSessionStore) Load(ctx context.Context, id string) (session.Record, error) {
	var m models.SessionModel
	err := s.live(ctx, id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session.Record{}, nil
	}
	if err != nil {
		return session.Record{}, fmt.Errorf("failed to load session: %w", err)
	}
	if err := s.live(ctx, id).Update("expires_at", s.deadline()).Error; err != nil {
		return session.Record{}, fmt.Errorf("failed to touch session: %w", err)
	}
	return m.ToDomain()
}

// upsert writes the given columns of row, inserting it if absent
func (s *GormSessionStore) upsert(ctx context.Context, row *models.SessionModel, columns ...string) error {
	if err := s.dropStale(ctx, row.BrowserID); err != nil {
		return err
	}
	row.ExpiresAt = s.deadline()
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "browser_id"}},
			DoUpdates: clause.AssignmentColumns(append(columns, "expires_at", "updated_at")),
		}).
		Create(row).Error
}

// Save stores the session
func (s *GormSessionStore) Save(ctx context.Context, id string, sess session.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	row := &models.SessionModel{BrowserID: id}
	if err := row.SetSession(sess); err != nil {
		return err
	}
	if err := s.upsert(ctx, row, "token", "user_data", "token_expires_at"); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the session, reporting whether one was present
func (s *GormSessionStore) Clear(ctx context.Context, id string) (bool, error) {
	return s.Expire(ctx, id, "")
}

// Expire clears the session and records returnTo on the transitioning call.
// The conditional update matches at most once per session.
func (s *GormSessionStore) Expire(ctx context.Context, id, returnTo string) (bool, error) {
	updates := map[string]any{
		"token":            "",
		"user_data":        "",
		"token_expires_at": 0,
		"expires_at":       s.deadline(),
	}
	if returnTo != "" {
		updates["redirect"] = returnTo
	}
	result := s.live(ctx, id).Where("token <> ''").Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to expire session: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SetRedirect records the post-login redirect
func (s *GormSessionStore) SetRedirect(ctx context.Context, id, path string) error {
	if err := s.upsert(ctx, &models.SessionModel{BrowserID: id, Redirect: path}, "redirect"); err != nil {
		return fmt.Errorf("failed to set redirect: %w", err)
	}
	return nil
}

// TakeRedirect returns and removes the post-login redirect
func (s *GormSessionStore) TakeRedirect(ctx context.Context, id string) (string, error) {
	return s.take(ctx, id, "redirect")
}

// SetPendingDish records a dish to offer after login
func (s *GormSessionStore) SetPendingDish(ctx context.Context, id string, dish session.PendingDish) error {
	row := &models.SessionModel{BrowserID: id}
	if err := row.SetPending(dish); err != nil {
		return err
	}
	if err := s.upsert(ctx, row, "pending_dish"); err != nil {
		return fmt.Errorf("failed to set pending dish: %w", err)
	}
	return nil
}

// TakePendingDish returns and removes the pending dish
func (s *GormSessionStore) TakePendingDish(ctx context.Context, id string) (*session.PendingDish, error) {
	raw, err := s.take(ctx, id, "pending_dish")
	if err != nil {
		return nil, err
	}
	return models.DecodePending(raw)
}

// take reads a column and blanks it only if it still holds the value read,
// so two concurrent takes never both return it
func (s *GormSessionStore) take(ctx context.Context, id, column string) (string, error) {
	for attempt := 0; attempt < maxTakeAttempts; attempt++ {
		var values []string
		if err := s.live(ctx, id).Pluck(column, &values).Error; err != nil {
			return "", fmt.Errorf("failed to read %s: %w", column, err)
		}
		if len(values) == 0 || values[0] == "" {
			return "", nil
		}

		result := s.live(ctx, id).Where(column+" = ?", values[0]).Update(column, "")
		if result.Error != nil {
			return "", fmt.Errorf("failed to take %s: %w", column, result.Error)
		}
		if result.RowsAffected == 1 {
			return values[0], nil
		}
	}
	return "", fmt.Errorf("failed to take %s: concurrent update", column)
}

// PurgeExpired deletes idle-expired rows
func (s *GormSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now().UnixMilli()).
		Delete(&models.SessionModel{})
	return result.RowsAffected, result.Error
}

// Close is a no-op; the owner of the database closes the connection
func (s *GormSessionStore) Close() error {
	return nil
}

var _ session.Store = (*GormSessionStore)(nil)
