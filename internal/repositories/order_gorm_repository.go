package repositories

import (
	"errors"
	"fmt"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders from the database.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID from the database.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByUserID retrieves the orders owned by a user, newest first.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// TransitionStatus applies the lifecycle guard inside the UPDATE itself:
// the status only changes while the current value is one the state machine
// allows to move to the target.
func (r *GORMOrderRepository) TransitionStatus(id string, to models.OrderStatus) (*models.Order, error) {
	allowed := transitionSources(to)
	if len(allowed) == 0 {
		return nil, fmt.Errorf("order %s: no state may enter %s: %w", id, to, ErrInvalidTransition)
	}

	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to transition order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		order, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("order %s is %s: %w", id, order.Status, ErrInvalidTransition)
	}
	return r.GetByID(id)
}

// transitionSources lists the statuses from which `to` is reachable.
func transitionSources(to models.OrderStatus) []models.OrderStatus {
	all := []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	}
	var sources []models.OrderStatus
	for _, from := range all {
		if from.CanTransitionTo(to) {
			sources = append(sources, from)
		}
	}
	return sources
}
