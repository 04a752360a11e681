package services

import (
	"context"
	"fmt"

	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
	"github.com/suchimauz/clinic-booking-service/internal/core/json_types"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
	"github.com/suchimauz/clinic-booking-service/internal/utils"
)

type BookingService struct {
	store     *BookingStore
	slotClock domain.SlotClock
	clock     domain.Clock

	notificationPort out.NotificationPort
	cachePort        out.CachePort
	logger           out.LoggerPort
}

func NewBookingService(
	store *BookingStore,
	slotClock domain.SlotClock,
	clock domain.Clock,
	notificationPort out.NotificationPort,
	cachePort out.CachePort,
	logger out.LoggerPort,
) *BookingService {
	return &BookingService{
		store:            store,
		slotClock:        slotClock,
		clock:            clock,
		notificationPort: notificationPort,
		cachePort:        cachePort,
		logger:           logger.WithModule("BookingService"),
	}
}

// SubmitBooking - конвейер приема заявки. Порядок проверок фиксирован,
// первая неудачная завершает обработку.
func (s *BookingService) SubmitBooking(ctx context.Context, req domain.SubmitRequest) (domain.Admission, error) {
	if req.PatientName == "" || req.Phone == "" || req.Date == "" || req.Time == "" {
		return domain.Admission{}, domain.ErrIncompleteRequest
	}

	if len(req.Phone) < domain.MinPhoneLength {
		return domain.Admission{}, domain.ErrInvalidPhone
	}

	date, err := utils.ParseDay(req.Date)
	if err != nil {
		// Нечитаемая дата приравнивается к незаполненному полю
		return domain.Admission{}, domain.ErrIncompleteRequest
	}

	// Форма отсекает прошедшие даты сама, но движок перепроверяет
	if utils.StartCurrentDay(date).Before(s.slotClock.MinimumBookableDate()) {
		return domain.Admission{}, domain.ErrPastDate
	}

	if !s.slotClock.IsValidSlot(req.Time) {
		return domain.Admission{}, domain.ErrInvalidSlot
	}

	booking := domain.Booking{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Date:        json_types.Date{Date: date},
		Time:        req.Time,
		CreatedAt:   json_types.DateTime{Date: s.clock.Now()},
	}

	admitted, persisted, err := s.store.Admit(ctx, booking)
	if err != nil {
		s.logger.Info("booking.submit.rejected", out.LogFields{
			"date":  req.Date,
			"time":  req.Time,
			"error": err.Error(),
		})
		return domain.Admission{}, err
	}

	s.logger.Info("booking.submit.admitted", out.LogFields{
		"bookingId": admitted.ID,
		"date":      admitted.Date.String(),
		"time":      admitted.Time,
		"persisted": persisted,
	})

	if s.cachePort != nil {
		s.cachePort.InvalidateAvailability(ctx, admitted.Date.String())
	}

	// Уведомление уходит после фиксации брони и не влияет на результат
	if s.notificationPort != nil {
		go s.dispatchNotification(admitted)
	}

	return domain.Admission{Booking: admitted, Persisted: persisted}, nil
}

func (s *BookingService) dispatchNotification(booking domain.Booking) {
	// Контекст запроса к этому моменту уже мертв
	if err := s.notificationPort.SendBookingNotification(context.Background(), booking); err != nil {
		s.logger.Warn("booking.notify.failed", out.LogFields{
			"bookingId": booking.ID,
			"error":     err.Error(),
		})
	}
}

func (s *BookingService) ListBookings(ctx context.Context) []domain.Booking {
	return s.store.Snapshot()
}

// GetAvailability строит карту занятости слотов на дату.
// Карта кэшируется с поколением коллекции, снятым до сканирования: запись,
// собранная параллельно с приемом брони, на следующем чтении даст промах
// вместо устаревшего "слот свободен".
func (s *BookingService) GetAvailability(ctx context.Context, date string) (map[string]bool, error) {
	parsed, err := utils.ParseDay(date)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	day := parsed.Format("2006-01-02")

	generation := s.store.Generation()
	if s.cachePort != nil {
		if availability, exists := s.cachePort.GetAvailability(ctx, day, generation); exists {
			return availability, nil
		}
	}

	availability := make(map[string]bool)
	for _, slot := range s.slotClock.Slots() {
		availability[slot] = s.store.HasConflict(day, slot)
	}

	if s.cachePort != nil {
		s.cachePort.StoreAvailability(ctx, day, availability, generation)
	}

	return availability, nil
}

func (s *BookingService) Slots() []string {
	return s.slotClock.Slots()
}
