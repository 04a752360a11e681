package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
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

type fakeUseCase struct {
	admission domain.Admission
	err       error
	submitted int
}

func (u *fakeUseCase) SubmitBooking(ctx context.Context, req domain.SubmitRequest) (domain.Admission, error) {
	u.submitted++
	return u.admission, u.err
}

func (u *fakeUseCase) ListBookings(ctx context.Context) []domain.Booking { return nil }

func (u *fakeUseCase) GetAvailability(ctx context.Context, date string) (map[string]bool, error) {
	return nil, nil
}

func (u *fakeUseCase) Slots() []string { return nil }

func newTestListener(useCase *fakeUseCase) *BookingListener {
	return &BookingListener{
		useCase: useCase,
		logger:  nopLogger{},
	}
}

func TestBookingListener_ConsumeLoopStops(t *testing.T) {
	t.Run("delivery channel closed by broker", func(t *testing.T) {
		listener := newTestListener(&fakeUseCase{})
		msgs := make(chan amqp.Delivery)

		done := make(chan struct{})
		go func() {
			listener.consumeLoop(context.Background(), "clinic.bookings", msgs)
			close(done)
		}()

		close(msgs)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("consume loop kept running after the delivery channel closed")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		listener := newTestListener(&fakeUseCase{})
		msgs := make(chan amqp.Delivery)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			listener.consumeLoop(ctx, "clinic.bookings", msgs)
			close(done)
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("consume loop kept running after context cancellation")
		}
	})
}

func TestBookingListener_ProcessBookingMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("valid request is submitted", func(t *testing.T) {
		useCase := &fakeUseCase{admission: domain.Admission{Persisted: true}}
		listener := newTestListener(useCase)

		msg := amqp.Delivery{Body: []byte(`{"patientName":"Ali","phone":"01012345678","date":"2026-03-11","time":"09:00"}`)}
		if err := listener.processBookingMessage(ctx, msg); err != nil {
			t.Fatalf("expected message to be processed, got %v", err)
		}
		if useCase.submitted != 1 {
			t.Errorf("expected 1 submission, got %d", useCase.submitted)
		}
	})

	t.Run("unreadable message is dropped", func(t *testing.T) {
		useCase := &fakeUseCase{}
		listener := newTestListener(useCase)

		msg := amqp.Delivery{Body: []byte("{not json")}
		if err := listener.processBookingMessage(ctx, msg); err != nil {
			t.Fatalf("expected unreadable message to be dropped, got %v", err)
		}
		if useCase.submitted != 0 {
			t.Errorf("expected no submissions, got %d", useCase.submitted)
		}
	})

	t.Run("rejection is not requeued", func(t *testing.T) {
		useCase := &fakeUseCase{err: domain.ErrSlotTaken}
		listener := newTestListener(useCase)

		msg := amqp.Delivery{Body: []byte(`{"patientName":"Ali","phone":"01012345678","date":"2026-03-11","time":"09:00"}`)}
		if err := listener.processBookingMessage(ctx, msg); err != nil {
			t.Fatalf("expected rejection to be acked, got %v", err)
		}
	})

	t.Run("infrastructure error is requeued", func(t *testing.T) {
		useCase := &fakeUseCase{err: errors.New("storage down")}
		listener := newTestListener(useCase)

		msg := amqp.Delivery{Body: []byte(`{"patientName":"Ali","phone":"01012345678","date":"2026-03-11","time":"09:00"}`)}
		if err := listener.processBookingMessage(ctx, msg); err == nil {
			t.Fatal("expected infrastructure error to propagate for requeue")
		}
	})
}
