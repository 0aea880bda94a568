package repositories

import "lapak/internal/models"

// UserRepository defines the interface for user data access, including the
// wallet ledger and the user's cart.
//
// Debit is a single indivisible conditional update (balance >= amount) at
// the storage layer; together with the unique index on transaction
// references it is what prevents double-spend under concurrent checkouts.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)

	// Debit decrements balance by amount only if balance >= amount and
	// appends txn to the user's history. ErrInsufficientBalance otherwise.
	Debit(userID string, amount int64, txn *models.Transaction) error
	// Credit increments balance by amount and appends txn (refund/deposit).
	Credit(userID string, amount int64, txn *models.Transaction) error
	// AppendTransaction records txn without touching the balance (used for
	// externally settled payments). ErrDuplicateReference if txn carries a
	// reference that is already recorded.
	AppendTransaction(userID string, txn *models.Transaction) error
	// HasProcessedReference reports whether ref appears in any user's
	// transaction history.
	HasProcessedReference(ref string) (bool, error)
	GetTransactions(userID string) ([]models.Transaction, error)

	GetCart(userID string) ([]models.CartLine, error)
	// UpsertCartLine adds line to the cart, incrementing the quantity of an
	// existing (product, size, color) combination instead of duplicating it.
	UpsertCartLine(userID string, line models.CartLine) error
	// SetCartLineQuantity sets the quantity of an existing line; a quantity
	// of zero or less removes the line.
	SetCartLineQuantity(userID string, productID, size, color string, quantity int) error
	RemoveCartLine(userID string, productID, size, color string) error
	ClearCart(userID string) error
}
