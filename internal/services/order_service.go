package services

import (
	"log"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/pkg/events"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	mqClient    *events.Client
}

// NewOrderService creates a new OrderService. mqClient may be nil, in which
// case no events are published.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, mqClient *events.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		mqClient:    mqClient,
	}
}

// GetAllOrders retrieves all orders with their products embedded.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// PlaceOrder creates a new order for an existing product. The status is
// forced to Pending regardless of what the request carried, and an
// order.placed event is published on success.
func (s *OrderService) PlaceOrder(order *models.Order) (*models.Order, error) {
	product, err := s.productRepo.GetByID(order.ProductID)
	if err != nil {
		return nil, err
	}

	order.Status = models.StatusPending
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	order.Product = product

	if s.mqClient != nil {
		if err := s.mqClient.PublishOrderPlaced(order.ID, order.ProductID, order.Status); err != nil {
			log.Printf("Warning: failed to publish order placed event for order %d: %v", order.ID, err)
		}
	}

	return order, nil
}

// UpdateOrderStatus overwrites the status of an existing order and returns
// the updated order. Any string is accepted: the marketplace has no status
// state machine.
func (s *OrderService) UpdateOrderStatus(id uint, status string) (*models.Order, error) {
	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}

	if s.mqClient != nil {
		if err := s.mqClient.PublishStatusChanged(id, status); err != nil {
			log.Printf("Warning: failed to publish status change event for order %d: %v", id, err)
		}
	}

	return s.orderRepo.GetByID(id)
}

// DeleteOrder deletes an order by its ID.
func (s *OrderService) DeleteOrder(id uint) error {
	return s.orderRepo.Delete(id)
}
