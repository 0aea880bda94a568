package services

import (
	"fmt"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// CartService handles business logic related to a user's cart.
type CartService struct {
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(userRepo repositories.UserRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's cart lines.
func (s *CartService) GetCart(userID string) ([]models.CartLine, error) {
	return s.userRepo.GetCart(userID)
}

// AddToCart adds a line to the cart. An existing (product, size, color)
// combination has its quantity incremented instead of a duplicate line
// being created.
func (s *CartService) AddToCart(userID string, line models.CartLine) error {
	if line.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if _, err := s.productRepo.GetByID(line.ProductID); err != nil {
		return fmt.Errorf("cannot add product %s to cart: %w", line.ProductID, err)
	}
	return s.userRepo.UpsertCartLine(userID, line)
}

// SetQuantity sets the quantity of an existing line; zero removes it.
func (s *CartService) SetQuantity(userID string, productID, size, color string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	return s.userRepo.SetCartLineQuantity(userID, productID, size, color, quantity)
}

// RemoveLine removes a line by its merge identity.
func (s *CartService) RemoveLine(userID string, productID, size, color string) error {
	return s.userRepo.RemoveCartLine(userID, productID, size, color)
}

// ClearCart removes every line from the user's cart.
func (s *CartService) ClearCart(userID string) error {
	return s.userRepo.ClearCart(userID)
}
