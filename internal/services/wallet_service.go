package services

import (
	"fmt"

	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/google/uuid"
)

// WalletService exposes a user's wallet: balance, transaction history and
// administrative deposits. Debits only happen through the checkout saga.
type WalletService struct {
	userRepo repositories.UserRepository
}

// NewWalletService creates a new WalletService.
func NewWalletService(userRepo repositories.UserRepository) *WalletService {
	return &WalletService{userRepo: userRepo}
}

// GetBalance returns the user's current balance in minor currency units.
func (s *WalletService) GetBalance(userID string) (int64, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// GetTransactions returns the user's transaction history in append order.
func (s *WalletService) GetTransactions(userID string) ([]models.Transaction, error) {
	return s.userRepo.GetTransactions(userID)
}

// Deposit credits the user's wallet and records a deposit transaction.
func (s *WalletService) Deposit(userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive")
	}
	txn := &models.Transaction{
		ID:     uuid.New().String(),
		Type:   models.TransactionDeposit,
		Amount: amount,
		Status: models.TransactionSuccess,
		Method: models.PaymentMethodWallet,
	}
	return s.userRepo.Credit(userID, amount, txn)
}
