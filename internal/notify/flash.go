package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultFlashTTL = time.Minute

// FlashStore keeps notifications per session until the session's next page
// view reads them.
type FlashStore interface {
	Push(ctx context.Context, session string, n Notification) error
	Pop(ctx context.Context, session string) ([]Notification, error)
}

// NewSessionID returns a random opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like a value from NewSessionID.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// SessionSink returns a Sink that stores notifications for session.
// Store failures are logged; the action that emitted the notification is not
// affected.
func SessionSink(store FlashStore, session string, logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return SinkFunc(func(ctx context.Context, n Notification) {
		if err := store.Push(ctx, session, n); err != nil {
			logger.Warn("flash push failed",
				slog.String("session", session),
				slog.String("error", err.Error()),
			)
		}
	})
}

type flashEntry struct {
	items     []Notification
	expiresAt time.Time
}

type MemoryFlashStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]flashEntry
	now     func() time.Time
}

func NewMemoryFlashStore(ttl time.Duration) *MemoryFlashStore {
	if ttl <= 0 {
		ttl = defaultFlashTTL
	}
	return &MemoryFlashStore{
		ttl:     ttl,
		entries: make(map[string]flashEntry),
		now:     time.Now,
	}
}

func (s *MemoryFlashStore) Push(_ context.Context, session string, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)
	entry := s.entries[session]
	entry.items = append(entry.items, n)
	entry.expiresAt = now.Add(s.ttl)
	s.entries[session] = entry
	return nil
}

func (s *MemoryFlashStore) Pop(_ context.Context, session string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[session]
	if !ok {
		return nil, nil
	}
	delete(s.entries, session)
	if !s.now().Before(entry.expiresAt) {
		return nil, nil
	}
	return entry.items, nil
}

func (s *MemoryFlashStore) sweepLocked(now time.Time) {
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}
