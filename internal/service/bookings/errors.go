package bookings

import "errors"

var (
	// ErrBookingNotFound бронирование не найдено или недоступно вызывающему
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrInvalidTransition переход запрещён жизненным циклом бронирования
	ErrInvalidTransition = errors.New("bookings: invalid state transition")

	// ErrAlreadyCancelled бронирование уже отменено
	ErrAlreadyCancelled = errors.New("bookings: booking already cancelled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
