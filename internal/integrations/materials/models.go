package materials

import "github.com/shopspring/decimal"

// Material материал из внешнего каталога
type Material struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"` // pdf | video
}

// materialEnvelope каталог отдаёт либо {"material": {...}}, либо сам объект
type materialEnvelope struct {
	Wrapped *Material `json:"material"`
	Material
}

func (e *materialEnvelope) material() *Material {
	if e.Wrapped != nil {
		return e.Wrapped
	}
	if e.Material.ID != "" {
		return &e.Material
	}
	return nil
}
