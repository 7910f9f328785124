package orders

import "errors"

var (
	// ErrOrderNotFound заказ не найден или недоступен вызывающему
	ErrOrderNotFound = errors.New("orders: order not found")

	// ErrMaterialNotFound материала нет во внешнем каталоге
	ErrMaterialNotFound = errors.New("orders: material not found")

	// ErrMaterialsUnavailable внешний каталог не отвечает
	ErrMaterialsUnavailable = errors.New("orders: materials catalog unavailable")

	// ErrInvalidTransition переход запрещён жизненным циклом заказа
	ErrInvalidTransition = errors.New("orders: invalid state transition")

	// ErrAlreadyCancelled заказ уже отменён
	ErrAlreadyCancelled = errors.New("orders: order already cancelled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("orders: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("orders: internal error")
)
