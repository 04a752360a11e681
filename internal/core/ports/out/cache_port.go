package out

import (
	"context"
)

// CachePort кэширует карту занятости слотов по датам. Каждая запись метится
// поколением коллекции броней: чтение с другим поколением трактуется как
// промах, поэтому карта, собранная до приема брони, не переживает его.
type CachePort interface {
	GetAvailability(ctx context.Context, date string, generation uint64) (map[string]bool, bool)
	StoreAvailability(ctx context.Context, date string, availability map[string]bool, generation uint64)
	InvalidateAvailability(ctx context.Context, date string)
}
