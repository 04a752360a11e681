package domain

import (
	"fmt"
	"time"

	"github.com/suchimauz/clinic-booking-service/internal/utils"
)

// Часы работы клиники: слоты по полчаса с 09:00 до 20:00 включительно,
// после 20:00 получаса нет
const (
	OpeningHour = 9
	ClosingHour = 20
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// GenerateSlots возвращает фиксированную сетку слотов дня по возрастанию.
// Чистая функция, без состояния.
func GenerateSlots() []string {
	slots := make([]string, 0, (ClosingHour-OpeningHour)*2+1)
	for hour := OpeningHour; hour <= ClosingHour; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
		if hour < ClosingHour {
			slots = append(slots, fmt.Sprintf("%02d:30", hour))
		}
	}
	return slots
}

// SlotClock отвечает за сетку слотов и нижнюю границу дат бронирования
type SlotClock struct {
	clock    Clock
	location *time.Location
}

func NewSlotClock(clock Clock, location *time.Location) SlotClock {
	return SlotClock{
		clock:    clock,
		location: location,
	}
}

func (c SlotClock) Slots() []string {
	return GenerateSlots()
}

// IsValidSlot проверяет, что время входит в сетку слотов
func (c SlotClock) IsValidSlot(slot string) bool {
	for _, s := range GenerateSlots() {
		if s == slot {
			return true
		}
	}
	return false
}

// MinimumBookableDate - сегодняшняя дата по календарю клиники.
// Заявки на более ранние даты отклоняются.
func (c SlotClock) MinimumBookableDate() time.Time {
	return utils.StartCurrentDay(c.clock.Now().In(c.location))
}
