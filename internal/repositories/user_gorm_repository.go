package repositories

import (
	"errors"
	"fmt"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with username %s: %w", username, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user with their cart from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Cart").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// Debit issues a single conditional UPDATE on the balance and appends the
// transaction in the same database transaction.
func (r *GORMUserRepository) Debit(userID string, amount int64, txn *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkReference(tx, txn); err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to debit user %s: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			var user models.User
			if err := tx.First(&user, "id = ?", userID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
				}
				return fmt.Errorf("failed to debit user %s: %w", userID, err)
			}
			return fmt.Errorf("user %s (requested: %d, available: %d): %w",
				userID, amount, user.Balance, ErrInsufficientBalance)
		}
		return appendTransaction(tx, userID, txn)
	})
}

// Credit increments the balance and appends the transaction.
func (r *GORMUserRepository) Credit(userID string, amount int64, txn *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkReference(tx, txn); err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to credit user %s: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
		}
		return appendTransaction(tx, userID, txn)
	})
}

// AppendTransaction records a transaction without touching the balance.
func (r *GORMUserRepository) AppendTransaction(userID string, txn *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkReference(tx, txn); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up user %s: %w", userID, err)
		}
		if count == 0 {
			return fmt.Errorf("user with ID %s: %w", userID, ErrUserNotFound)
		}
		return appendTransaction(tx, userID, txn)
	})
}

// HasProcessedReference checks the transactions table for ref.
func (r *GORMUserRepository) HasProcessedReference(ref string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Transaction{}).Where("reference = ?", ref).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check reference %s: %w", ref, err)
	}
	return count > 0, nil
}

// GetTransactions returns the user's transaction history, oldest first.
func (r *GORMUserRepository) GetTransactions(userID string) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.Where("user_id = ?", userID).Order("created_at asc").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %s: %w", userID, err)
	}
	return txns, nil
}

// GetCart returns the user's cart lines.
func (r *GORMUserRepository) GetCart(userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.Where("user_id = ?", userID).Order("id asc").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return lines, nil
}

// UpsertCartLine increments an existing (product, size, color) line or
// inserts a new one.
func (r *GORMUserRepository) UpsertCartLine(userID string, line models.CartLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartLine{}).
			Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
				userID, line.ProductID, line.Size, line.Color).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", line.Quantity))
		if res.Error != nil {
			return fmt.Errorf("failed to merge cart line: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		line.ID = 0
		line.UserID = userID
		if err := tx.Create(&line).Error; err != nil {
			return fmt.Errorf("failed to add cart line: %w", err)
		}
		return nil
	})
}

// SetCartLineQuantity sets or removes a line.
func (r *GORMUserRepository) SetCartLineQuantity(userID string, productID, size, color string, quantity int) error {
	if quantity <= 0 {
		return r.RemoveCartLine(userID, productID, size, color)
	}
	res := r.db.Model(&models.CartLine{}).
		Where("user_id = ? AND product_id = ? AND size = ? AND color = ?", userID, productID, size, color).
		UpdateColumn("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line for product %s not found", productID)
	}
	return nil
}

// RemoveCartLine drops a line by its merge identity.
func (r *GORMUserRepository) RemoveCartLine(userID string, productID, size, color string) error {
	res := r.db.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
		userID, productID, size, color).Delete(&models.CartLine{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line for product %s not found", productID)
	}
	return nil
}

// ClearCart removes every line from the user's cart.
func (r *GORMUserRepository) ClearCart(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}

// checkReference is the pre-commit existence check that keeps external
// payment references globally unique; the unique index on the column backs
// it up against races.
func checkReference(tx *gorm.DB, txn *models.Transaction) error {
	if txn.Reference == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Transaction{}).Where("reference = ?", *txn.Reference).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check reference: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("reference %s: %w", *txn.Reference, ErrDuplicateReference)
	}
	return nil
}

func appendTransaction(tx *gorm.DB, userID string, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	txn.UserID = userID
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	if err := tx.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}
