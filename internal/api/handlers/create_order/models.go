package create_order

// CreateOrderRequest HTTP request model; цену и название берем из каталога материалов
type CreateOrderRequest struct {
	MaterialID string `json:"materialId" validate:"required,max=128"`
}
