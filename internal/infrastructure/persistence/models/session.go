package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/delivery/storefront/internal/domain/session"
)

// SessionModel is one browser's session record
type SessionModel struct {
	BrowserID      string `gorm:"primaryKey;size:64"`
	Token          string `gorm:"type:text;not null;default:''"`
	UserData       string `gorm:"type:text;not null;default:''"`
	TokenExpiresAt int64  `gorm:"not null;default:0"`
	Redirect       string `gorm:"size:2048;not null;default:''"`
	PendingDish    string `gorm:"type:text;not null;default:''"`
	ExpiresAt      int64  `gorm:"index;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (SessionModel) TableName() string {
	return "storefront_sessions"
}

// SetSession encodes the session into the token columns
func (m *SessionModel) SetSession(s session.Session) error {
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	m.Token = s.Token
	m.UserData = string(user)
	m.TokenExpiresAt = 0
	if !s.ExpiresAt.IsZero() {
		m.TokenExpiresAt = s.ExpiresAt.UnixMilli()
	}
	return nil
}

// SetPending encodes the pending dish column
func (m *SessionModel) SetPending(dish session.PendingDish) error {
	data, err := json.Marshal(dish)
	if err != nil {
		return fmt.Errorf("encode pending dish: %w", err)
	}
	m.PendingDish = string(data)
	return nil
}

// DecodePending decodes a pending dish column value
func DecodePending(raw string) (*session.PendingDish, error) {
	if raw == "" {
		return nil, nil
	}
	var dish session.PendingDish
	if err := json.Unmarshal([]byte(raw), &dish); err != nil {
		return nil, fmt.Errorf("decode pending dish: %w", err)
	}
	return &dish, nil
}

// ToDomain converts the row into a session record
func (m *SessionModel) ToDomain() (session.Record, error) {
	rec := session.Record{Redirect: m.Redirect}

	dish, err := DecodePending(m.PendingDish)
	if err != nil {
		return rec, err
	}
	rec.PendingDish = dish

	if m.Token == "" || m.UserData == "" {
		return rec, nil
	}
	var user session.User
	if err := json.Unmarshal([]byte(m.UserData), &user); err != nil {
		return rec, fmt.Errorf("decode session user: %w", err)
	}
	rec.Session = session.Session{Token: m.Token, User: &user}
	if m.TokenExpiresAt > 0 {
		rec.Session.ExpiresAt = time.UnixMilli(m.TokenExpiresAt)
	}
	return rec, nil
}
