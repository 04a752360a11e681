package in

import (
	"context"

	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
)

type BookingUseCase interface {
	// Прием заявки на бронирование. При отказе возвращается одна из
	// ошибок domain.Err*, при успехе - принятая бронь и флаг записи
	// в долговременное хранилище
	SubmitBooking(ctx context.Context, req domain.SubmitRequest) (domain.Admission, error)

	// Снимок всех принятых броней
	ListBookings(ctx context.Context) []domain.Booking

	// Карта занятости слотов на дату: слот -> занят
	GetAvailability(ctx context.Context, date string) (map[string]bool, error)

	// Фиксированная сетка слотов дня
	Slots() []string
}
