package materials

import "errors"

var (
	ErrMaterialNotFound = errors.New("materials: material not found")
	ErrInvalidResponse  = errors.New("materials: invalid response")
	ErrUnavailable      = errors.New("materials: catalog unavailable")
	ErrInternal         = errors.New("materials: internal error")
)
