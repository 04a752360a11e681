package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := NewMemoryStorage()
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, out.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		s := NewMemoryStorage()
		if err := s.Set(ctx, "key", []byte("value")); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		value, err := s.Get(ctx, "key")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if !bytes.Equal(value, []byte("value")) {
			t.Errorf("expected 'value', got %q", value)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s := NewMemoryStorage()
		if err := s.Set(ctx, "key", []byte("old")); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := s.Set(ctx, "key", []byte("new")); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		value, _ := s.Get(ctx, "key")
		if !bytes.Equal(value, []byte("new")) {
			t.Errorf("expected 'new', got %q", value)
		}
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		s := NewMemoryStorage()
		if err := s.Set(ctx, "key", []byte("value")); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		value, _ := s.Get(ctx, "key")
		value[0] = 'X'

		again, _ := s.Get(ctx, "key")
		if !bytes.Equal(again, []byte("value")) {
			t.Errorf("stored value was mutated: %q", again)
		}
	})
}

func TestFileStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s, err := NewFileStorage(t.TempDir())
		if err != nil {
			t.Fatalf("failed to init storage: %v", err)
		}
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, out.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		s, err := NewFileStorage(t.TempDir())
		if err != nil {
			t.Fatalf("failed to init storage: %v", err)
		}

		if err := s.Set(ctx, "clinic_bookings", []byte(`[{"id":1}]`)); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		value, err := s.Get(ctx, "clinic_bookings")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if !bytes.Equal(value, []byte(`[{"id":1}]`)) {
			t.Errorf("unexpected value: %q", value)
		}
	})

	t.Run("value survives new instance", func(t *testing.T) {
		dir := t.TempDir()
		first, err := NewFileStorage(dir)
		if err != nil {
			t.Fatalf("failed to init storage: %v", err)
		}
		if err := first.Set(ctx, "key", []byte("durable")); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		second, err := NewFileStorage(dir)
		if err != nil {
			t.Fatalf("failed to reopen storage: %v", err)
		}
		value, err := second.Get(ctx, "key")
		if err != nil {
			t.Fatalf("failed to get after reopen: %v", err)
		}
		if !bytes.Equal(value, []byte("durable")) {
			t.Errorf("unexpected value after reopen: %q", value)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s, err := NewFileStorage(t.TempDir())
		if err != nil {
			t.Fatalf("failed to init storage: %v", err)
		}
		if err := s.Set(ctx, "key", []byte("old")); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := s.Set(ctx, "key", []byte("new")); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		value, _ := s.Get(ctx, "key")
		if !bytes.Equal(value, []byte("new")) {
			t.Errorf("expected 'new', got %q", value)
		}
	})
}
