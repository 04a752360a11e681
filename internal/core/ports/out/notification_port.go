package out

import (
	"context"

	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
)

// NotificationPort - внешний канал уведомлений о новых бронях.
// Вызывается после успешного приема заявки, ошибки канала никогда
// не влияют на результат бронирования.
type NotificationPort interface {
	SendBookingNotification(ctx context.Context, booking domain.Booking) error
}
