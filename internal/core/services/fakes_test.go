package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(event string, fields out.LogFields) {}
func (nopLogger) Info(event string, fields out.LogFields) {}
func (nopLogger) Warn(event string, fields out.LogFields) {}
func (nopLogger) Error(event string, fields out.LogFields) {}
func (l nopLogger) WithFields(out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(string) out.LoggerPort { return l }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

var errStorageDown = errors.New("storage backend unavailable")

// fakeStorage - key-value бэкенд в памяти с переключаемыми отказами
type fakeStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string][]byte)}
}

func (s *fakeStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, exists := s.data[key]
	if !exists {
		return nil, out.ErrKeyNotFound
	}
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (s *fakeStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSet {
		return errStorageDown
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

func (s *fakeStorage) put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// fakeNotifier фиксирует отправленные уведомления
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []domain.Booking
	err    error
	signal chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{signal: make(chan struct{}, 16)}
}

func (n *fakeNotifier) SendBookingNotification(ctx context.Context, booking domain.Booking) error {
	n.mu.Lock()
	n.sent = append(n.sent, booking)
	err := n.err
	n.mu.Unlock()

	n.signal <- struct{}{}
	return err
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// waitForSend ждет очередную отправку уведомления
func (n *fakeNotifier) waitForSend(timeout time.Duration) bool {
	select {
	case <-n.signal:
		return true
	case <-time.After(timeout):
		return false
	}
}

// fakeCache фиксирует обращения к кэшу занятости. Хук onStore позволяет
// вклинить действие между сканированием коллекции и записью в кэш.
type cacheEntry struct {
	availability map[string]bool
	generation   uint64
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]cacheEntry
	invalidated []string
	onStore     func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]cacheEntry)}
}

func (c *fakeCache) GetAvailability(ctx context.Context, date string, generation uint64) (map[string]bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, exists := c.entries[date]
	if !exists || entry.generation != generation {
		return nil, false
	}
	return entry.availability, true
}

func (c *fakeCache) StoreAvailability(ctx context.Context, date string, availability map[string]bool, generation uint64) {
	if c.onStore != nil {
		hook := c.onStore
		c.onStore = nil
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[date] = cacheEntry{availability: availability, generation: generation}
}

func (c *fakeCache) InvalidateAvailability(ctx context.Context, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, date)
	c.invalidated = append(c.invalidated, date)
}

func (c *fakeCache) invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}
