package order

import "errors"

var (
	// ErrOrderNotFound возвращается, когда заказ не найден
	ErrOrderNotFound = errors.New("order.repository: order not found")

	ErrBuildQuery = errors.New("order.repository: failed to build query")
	ErrExecQuery  = errors.New("order.repository: failed to execute query")
	ErrScanRow    = errors.New("order.repository: failed to scan row")
)
