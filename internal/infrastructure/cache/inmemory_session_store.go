package cache

import (
	"context"
	"sync"
	"time"

	"github.com/delivery/storefront/internal/domain/session"
)

// memoryRecord is one browser's record with its idle deadline
type memoryRecord struct {
	record    session.Record
	expiresAt time.Time
}

// InMemorySessionStore implements session.Store using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemorySessionStore struct {
	mu      sync.Mutex
	records map[string]*memoryRecord
	ttl     time.Duration
	now     func() time.Time

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySessionStore creates a store whose idle records expire after ttl.
// It starts a background goroutine to clean up expired records.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	s := &InMemorySessionStore{
		records:  make(map[string]*memoryRecord),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// get returns the live record for id, creating it if asked. Caller holds mu.
func (s *InMemorySessionStore) get(id string, create bool) *memoryRecord {
	now := s.now()
	rec, ok := s.records[id]
	if ok && now.After(rec.expiresAt) {
		delete(s.records, id)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		rec = &memoryRecord{}
		s.records[id] = rec
	}
	rec.expiresAt = now.Add(s.ttl)
	return rec
}

// Load returns the record for the browser
func (s *InMemorySessionStore) Load(ctx context.Context, id string) (session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.get(id, false)
	if rec == nil {
		return session.Record{}, nil
	}
	out := rec.record
	out.Session.User = out.Session.User.Clone()
	if out.PendingDish != nil {
		dish := *out.PendingDish
		out.PendingDish = &dish
	}
	return out, nil
}

// Save stores the session
func (s *InMemorySessionStore) Save(ctx context.Context, id string, sess session.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.User = sess.User.Clone()
	s.get(id, true).record.Session = sess
	return nil
}

// Clear removes the session, reporting whether one was present
func (s *InMemorySessionStore) Clear(ctx context.Context, id string) (bool, error) {
	return s.Expire(ctx, id, "")
}

// Expire clears the session and records returnTo on the transitioning call
func (s *InMemorySessionStore) Expire(ctx context.Context, id, returnTo string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.get(id, false)
	if rec == nil || !rec.record.Session.IsAuthenticated() {
		return false, nil
	}
	rec.record.Session = session.Session{}
	if returnTo != "" {
		rec.record.Redirect = returnTo
	}
	return true, nil
}

// SetRedirect records the post-login redirect
func (s *InMemorySessionStore) SetRedirect(ctx context.Context, id, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(id, true).record.Redirect = path
	return nil
}

// TakeRedirect returns and removes the post-login redirect
func (s *InMemorySessionStore) TakeRedirect(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.get(id, false)
	if rec == nil {
		return "", nil
	}
	path := rec.record.Redirect
	rec.record.Redirect = ""
	return path, nil
}

// SetPendingDish records a dish to offer after login
func (s *InMemorySessionStore) SetPendingDish(ctx context.Context, id string, dish session.PendingDish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(id, true).record.PendingDish = &dish
	return nil
}

// TakePendingDish returns and removes the pending dish
func (s *InMemorySessionStore) TakePendingDish(ctx context.Context, id string) (*session.PendingDish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.get(id, false)
	if rec == nil {
		return nil, nil
	}
	dish := rec.record.PendingDish
	rec.record.PendingDish = nil
	return dish, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored records (for testing/monitoring)
func (s *InMemorySessionStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *InMemorySessionStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemorySessionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, id)
		}
	}
}

var _ session.Store = (*InMemorySessionStore)(nil)
