package repositories

import (
	"marketplace/internal/models"
)

// OrderRepository defines the interface for order data access. Reads resolve
// the referenced product so the embedded form can be serialized directly.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id uint) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
}
