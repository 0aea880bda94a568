package repositories

import (
	"fmt"
	"sync"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]*models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

// GetByUsername returns a user by username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user with username %s: %w", username, ErrUserNotFound)
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrUserNotFound)
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	cp := *u
	return &cp, nil
}

// Debit performs the balance check, the decrement and the history append
// under a single lock hold.
func (r *MockUserRepository) Debit(userID string, amount int64, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
	}
	if err := r.checkReferenceLocked(txn); err != nil {
		return err
	}
	if u.Balance < amount {
		return fmt.Errorf("user %s (requested: %d, available: %d): %w",
			userID, amount, u.Balance, ErrInsufficientBalance)
	}
	u.Balance -= amount
	r.appendLocked(u, txn)
	return nil
}

// Credit increments the balance and appends the transaction.
func (r *MockUserRepository) Credit(userID string, amount int64, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
	}
	if err := r.checkReferenceLocked(txn); err != nil {
		return err
	}
	u.Balance += amount
	r.appendLocked(u, txn)
	return nil
}

// AppendTransaction records a transaction without touching the balance.
func (r *MockUserRepository) AppendTransaction(userID string, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
	}
	if err := r.checkReferenceLocked(txn); err != nil {
		return err
	}
	r.appendLocked(u, txn)
	return nil
}

// HasProcessedReference scans every user's history for ref.
func (r *MockUserRepository) HasProcessedReference(ref string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.referenceExistsLocked(ref), nil
}

// GetTransactions returns the user's transaction history in append order.
func (r *MockUserRepository) GetTransactions(userID string) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
	}
	txns := make([]models.Transaction, len(u.Transactions))
	copy(txns, u.Transactions)
	return txns, nil
}

// GetCart returns the user's cart lines.
func (r *MockUserRepository) GetCart(userID string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
	}
	cart := make([]models.CartLine, len(u.Cart))
	copy(cart, u.Cart)
	return cart, nil
}

// UpsertCartLine merges on (product, size, color).
func (r *MockUserRepository) UpsertCartLine(userID string, line models.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
	}
	for i := range u.Cart {
		if u.Cart[i].MergeKey() == line.MergeKey() {
			u.Cart[i].Quantity += line.Quantity
			return nil
		}
	}
	line.UserID = userID
	u.Cart = append(u.Cart, line)
	return nil
}

// SetCartLineQuantity sets or removes a line.
func (r *MockUserRepository) SetCartLineQuantity(userID string, productID, size, color string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
	}
	key := models.CartLine{ProductID: productID, Size: size, Color: color}.MergeKey()
	for i := range u.Cart {
		if u.Cart[i].MergeKey() == key {
			if quantity <= 0 {
				u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
			} else {
				u.Cart[i].Quantity = quantity
			}
			return nil
		}
	}
	return fmt.Errorf("cart line for product %s not found", productID)
}

// RemoveCartLine drops a line by its merge identity.
func (r *MockUserRepository) RemoveCartLine(userID string, productID, size, color string) error {
	return r.SetCartLineQuantity(userID, productID, size, color, 0)
}

// ClearCart removes every line from the user's cart.
func (r *MockUserRepository) ClearCart(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
	}
	u.Cart = nil
	return nil
}

func (r *MockUserRepository) appendLocked(u *models.User, txn *models.Transaction) {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	txn.UserID = u.ID
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	u.Transactions = append(u.Transactions, *txn)
}

func (r *MockUserRepository) checkReferenceLocked(txn *models.Transaction) error {
	if txn.Reference == nil {
		return nil
	}
	if r.referenceExistsLocked(*txn.Reference) {
		return fmt.Errorf("reference %s: %w", *txn.Reference, ErrDuplicateReference)
	}
	return nil
}

func (r *MockUserRepository) referenceExistsLocked(ref string) bool {
	for _, u := range r.users {
		for _, t := range u.Transactions {
			if t.Reference != nil && *t.Reference == ref {
				return true
			}
		}
	}
	return false
}
