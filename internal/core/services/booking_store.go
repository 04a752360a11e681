package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
)

// BookingStore - единственный владелец коллекции броней. Коллекция живет
// в памяти и после каждого успешного приема зеркалируется в блоб-хранилище
// под одним фиксированным ключом.
//
// Политика долговечности - best-effort, как в исходной системе: неудачная
// запись блоба репортится вызывающему, но коллекция в памяти не
// откатывается и остается источником истины для проверки конфликтов.
type BookingStore struct {
	mu       sync.RWMutex
	bookings []domain.Booking
	lastID   int64
	gen      uint64

	key     string
	storage out.StoragePort
	clock   domain.Clock
	logger  out.LoggerPort
}

func NewBookingStore(key string, storage out.StoragePort, clock domain.Clock, logger out.LoggerPort) *BookingStore {
	return &BookingStore{
		bookings: make([]domain.Booking, 0),
		key:      key,
		storage:  storage,
		clock:    clock,
		logger:   logger.WithModule("BookingStore"),
	}
}

// Load читает сохраненную коллекцию из хранилища. Отсутствующий или
// битый блоб трактуется как пустая история: это осознанная политика,
// доступность записи на прием важнее строгой целостности при чтении.
func (s *BookingStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Коллекция замещается целиком, все кэшированные карты устаревают
	s.gen++

	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, out.ErrKeyNotFound) {
			s.logger.Info("store.load.empty", out.LogFields{
				"key": s.key,
			})
		} else {
			s.logger.Warn("store.load.failed", out.LogFields{
				"key":   s.key,
				"error": err.Error(),
			})
		}
		s.bookings = make([]domain.Booking, 0)
		return
	}

	var bookings []domain.Booking
	if err := json.Unmarshal(raw, &bookings); err != nil {
		s.logger.Warn("store.load.unmarshal_failed", out.LogFields{
			"key":   s.key,
			"error": err.Error(),
		})
		s.bookings = make([]domain.Booking, 0)
		return
	}

	s.bookings = bookings
	for _, b := range bookings {
		if b.ID > s.lastID {
			s.lastID = b.ID
		}
	}

	s.logger.Info("store.load.success", out.LogFields{
		"key":           s.key,
		"bookingsCount": len(bookings),
	})
}

// Generation возвращает номер поколения коллекции. Номер растет при каждом
// изменении состава броней и метит записи кэша занятости: карта, собранная
// до приема, не должна обслуживаться после него.
func (s *BookingStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.gen
}

// Snapshot возвращает копию коллекции для чтения
func (s *BookingStore) Snapshot() []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]domain.Booking, len(s.bookings))
	copy(snapshot, s.bookings)
	return snapshot
}

// HasConflict проверяет, занята ли пара (дата, слот)
func (s *BookingStore) HasConflict(date, slot string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hasConflictLocked(date, slot)
}

func (s *BookingStore) hasConflictLocked(date, slot string) bool {
	for _, b := range s.bookings {
		if b.Date.String() == date && b.Time == slot {
			return true
		}
	}
	return false
}

// nextIDLocked выдает идентификатор, производный от времени. Монотонный
// сторож закрывает коллизии двух приемов в одну миллисекунду.
func (s *BookingStore) nextIDLocked() int64 {
	id := s.clock.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Admit - атомарная операция приема: проверка конфликта, назначение
// идентификатора и добавление в коллекцию выполняются под одним замком,
// чтобы две конкурентные заявки на один слот не прошли обе.
// Возвращает принятую бронь и флаг успешности записи в хранилище.
func (s *BookingStore) Admit(ctx context.Context, booking domain.Booking) (domain.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasConflictLocked(booking.Date.String(), booking.Time) {
		return domain.Booking{}, false, domain.ErrSlotTaken
	}

	booking.ID = s.nextIDLocked()
	s.bookings = append(s.bookings, booking)
	s.gen++

	persisted := true
	if err := s.persistLocked(ctx); err != nil {
		// Без отката: бронь остается принятой, вызывающий предупрежден
		s.logger.Error("store.persist.failed", out.LogFields{
			"bookingId": booking.ID,
			"error":     err.Error(),
		})
		persisted = false
	}

	return booking, persisted, nil
}

// persistLocked сериализует всю коллекцию и пишет ее обратно под тот же ключ
func (s *BookingStore) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.bookings)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, s.key, raw)
}
