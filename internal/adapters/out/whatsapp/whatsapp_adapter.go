package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	nurl "net/url"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/clinic-booking-service/internal/config"
	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
)

// WhatsAppAdapter отправляет детали принятой брони на фиксированный
// номер клиники через wa.me-совместимый шлюз. Канал строго best-effort:
// без ретраев, ошибка никогда не доходит до бронирования.
type WhatsAppAdapter struct {
	client      *http.Client
	gatewayUrl  string
	clinicPhone string
	logger      out.LoggerPort
}

func NewWhatsAppAdapter(cfg *config.Config, logger out.LoggerPort) *WhatsAppAdapter {
	return &WhatsAppAdapter{
		client:      &http.Client{Timeout: 10 * time.Second},
		gatewayUrl:  cfg.WhatsApp.GatewayUrl,
		clinicPhone: cfg.WhatsApp.ClinicPhone,
		logger:      logger,
	}
}

// buildMessage собирает текст уведомления с полями брони
func (a *WhatsAppAdapter) buildMessage(booking domain.Booking) string {
	return fmt.Sprintf(`حجز جديد في العيادة 📋

👤 اسم المريض: %s
📱 رقم الهاتف: %s
📅 التاريخ: %s
⏰ الوقت: %s
🔢 رقم الحجز: %d

تم الحجز بنجاح ✅`,
		booking.PatientName,
		booking.Phone,
		booking.Date.String(),
		booking.Time,
		booking.ID,
	)
}

func (a *WhatsAppAdapter) SendBookingNotification(ctx context.Context, booking domain.Booking) error {
	dispatchID := uuid.New()

	query := nurl.Values{}
	query.Set("text", a.buildMessage(booking))
	url := fmt.Sprintf("%s/%s?%s", a.gatewayUrl, a.clinicPhone, query.Encode())

	a.logger.Info("whatsapp.send", out.LogFields{
		"dispatchId": dispatchID,
		"bookingId":  booking.ID,
		"phone":      a.clinicPhone,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		a.logger.Error("whatsapp.send.failed", out.LogFields{
			"dispatchId": dispatchID,
			"bookingId":  booking.ID,
			"error":      err.Error(),
		})
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("whatsapp.send.failed", out.LogFields{
			"dispatchId": dispatchID,
			"bookingId":  booking.ID,
			"error":      err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		a.logger.Error("whatsapp.send.failed", out.LogFields{
			"dispatchId": dispatchID,
			"bookingId":  booking.ID,
			"status":     resp.StatusCode,
		})
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	a.logger.Debug("whatsapp.send.success", out.LogFields{
		"dispatchId": dispatchID,
		"bookingId":  booking.ID,
	})

	return nil
}
