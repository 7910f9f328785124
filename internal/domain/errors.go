package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition переход запрещён правилами жизненного цикла
	ErrInvalidTransition = errors.New("domain: invalid state transition")

	// ErrAlreadyCancelled повторная отмена. Частный случай ErrInvalidTransition
	ErrAlreadyCancelled = fmt.Errorf("%w: already cancelled", ErrInvalidTransition)
)
