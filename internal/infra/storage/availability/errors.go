package availability

import "errors"

var (
	// ErrWindowNotFound возвращается, когда окно доступности не найдено
	ErrWindowNotFound = errors.New("availability.repository: window not found")

	ErrBuildQuery = errors.New("availability.repository: failed to build query")
	ErrExecQuery  = errors.New("availability.repository: failed to execute query")
	ErrScanRow    = errors.New("availability.repository: failed to scan row")
)
