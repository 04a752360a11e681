package utils

import (
	"fmt"
	"time"

	"github.com/suchimauz/clinic-booking-service/internal/config"
)

// StartCurrentDay возвращает дату с временем 00:00, таймзона остается прежней.
func StartCurrentDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDay парсит календарную дату вида "2006-01-02" в таймзоне клиники.
// Формат строгий: заявка с таймстемпом дала бы дату в чужом поясе, и
// сравнение с минимальной датой клиники потеряло бы смысл.
func ParseDay(str string) (time.Time, error) {
	parsedDate, err := time.ParseInLocation("2006-01-02", str, config.TimeZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date: %v", err)
	}

	return parsedDate, nil
}
