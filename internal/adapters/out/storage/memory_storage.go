package storage

import (
	"context"
	"sync"

	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
)

// MemoryStorage - потокобезопасный key-value бэкенд в памяти,
// используется в тестах и локальной разработке
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string][]byte),
	}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.data[key]
	if !exists {
		return nil, out.ErrKeyNotFound
	}

	// Отдаем копию, чтобы вызывающий не мог изменить хранимое значение
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored

	return nil
}
