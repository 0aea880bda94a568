package repositories

import (
	"lapak/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never hard-deleted by the normal flow; cancellation is a status change.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	// TransitionStatus moves the order to the given status, enforcing the
	// lifecycle as one conditional update: the write only applies while the
	// current status allows the transition, so a second cancellation of the
	// same order deterministically fails with ErrInvalidTransition.
	TransitionStatus(id string, to models.OrderStatus) (*models.Order, error)
}
