package repositories

import (
	"lapak/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// ReserveStock and ReleaseStock are the inventory ledger: ReserveStock is a
// single indivisible check-and-decrement (it must never be a read followed
// by a write, or two concurrent reservations could both pass a stale read),
// and ReleaseStock is the unconditional compensating increment.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error

	// ReserveStock decrements stock by qty only if stock >= qty, returning
	// ErrInsufficientStock otherwise. ErrProductNotFound if id is unknown.
	ReserveStock(id string, qty int) error
	// ReleaseStock increments stock by qty. ErrProductNotFound if the
	// product no longer exists; the caller logs and skips in that case.
	ReleaseStock(id string, qty int) error
}
