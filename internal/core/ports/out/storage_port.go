package out

import (
	"context"
	"errors"
)

// ErrKeyNotFound возвращается, когда ключа в хранилище нет
var ErrKeyNotFound = errors.New("key not found")

// StoragePort - внешний key-value бэкенд, хранящий значения как
// непрозрачные блобы. Гарантии долговечности - на стороне бэкенда.
type StoragePort interface {
	// Get возвращает значение по ключу, ErrKeyNotFound если ключа нет
	Get(ctx context.Context, key string) ([]byte, error)

	// Set записывает значение по ключу, перезаписывая существующее
	Set(ctx context.Context, key string, value []byte) error
}
