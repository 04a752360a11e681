package domain

import (
	"errors"

	"github.com/suchimauz/clinic-booking-service/internal/core/json_types"
)

// Причины отказа в приеме заявки. Все - ошибки клиентского ввода,
// отдаются наружу как есть.
var (
	ErrIncompleteRequest = errors.New("booking request is incomplete")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrPastDate          = errors.New("booking date is in the past")
	ErrInvalidSlot       = errors.New("time is not a valid slot")
	ErrSlotTaken         = errors.New("slot is already taken")
)

// IsRejection сообщает, является ли ошибка отказом по вине клиента.
// Такие заявки не имеет смысла повторять.
func IsRejection(err error) bool {
	return errors.Is(err, ErrIncompleteRequest) ||
		errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrPastDate) ||
		errors.Is(err, ErrInvalidSlot) ||
		errors.Is(err, ErrSlotTaken)
}

// Минимальная длина номера телефона пациента
const MinPhoneLength = 11

// Booking - принятая запись на прием. После создания не изменяется.
type Booking struct {
	ID          int64               `json:"id"`
	PatientName string              `json:"patientName"`
	Phone       string              `json:"phone"`
	Date        json_types.Date     `json:"date"`
	Time        string              `json:"time"`
	CreatedAt   json_types.DateTime `json:"createdAt"`
}

// SubmitRequest - входящая заявка на бронирование в том виде,
// в котором ее присылает форма или очередь
type SubmitRequest struct {
	PatientName string `json:"patientName"`
	Phone       string `json:"phone"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Admission - результат приема заявки. Persisted=false означает, что
// бронь принята, но запись в хранилище не удалась (см. политику
// best-effort в BookingStore) - вызывающий может предупредить пользователя.
type Admission struct {
	Booking   Booking
	Persisted bool
}
