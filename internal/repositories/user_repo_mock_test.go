package repositories_test

import (
	"testing"

	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func newTestUser(t *testing.T, repo *repositories.MockUserRepository, balance int64) *models.User {
	t.Helper()
	user := &models.User{
		Username: "budi",
		Email:    "budi@example.com",
		Password: "hashed",
		Balance:  balance,
	}
	assert.NoError(t, repo.Create(user))
	return user
}

func TestMockUserRepository_Debit(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	user := newTestUser(t, repo, 50000)

	txn := &models.Transaction{Type: models.TransactionPurchase, Amount: 32500, Status: models.TransactionSuccess, Method: models.PaymentMethodWallet}
	assert.NoError(t, repo.Debit(user.ID, 32500, txn))

	got, err := repo.GetByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(17500), got.Balance)

	txns, err := repo.GetTransactions(user.ID)
	assert.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Equal(t, models.TransactionPurchase, txns[0].Type)
	assert.Equal(t, int64(32500), txns[0].Amount)

	// A debit past the balance is rejected before any side effect
	err = repo.Debit(user.ID, 20000, &models.Transaction{Type: models.TransactionPurchase, Amount: 20000})
	assert.ErrorIs(t, err, repositories.ErrInsufficientBalance)
	got, _ = repo.GetByID(user.ID)
	assert.Equal(t, int64(17500), got.Balance)
	txns, _ = repo.GetTransactions(user.ID)
	assert.Len(t, txns, 1)
}

func TestMockUserRepository_ReferenceUniqueness(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	alice := newTestUser(t, repo, 0)
	bob := &models.User{Username: "sari", Email: "sari@example.com", Password: "hashed"}
	assert.NoError(t, repo.Create(bob))

	ref := "MIDGATE-001"
	txn := &models.Transaction{Type: models.TransactionPurchase, Amount: 10000, Reference: &ref, Method: models.PaymentMethodGateway}
	assert.NoError(t, repo.AppendTransaction(alice.ID, txn))

	processed, err := repo.HasProcessedReference(ref)
	assert.NoError(t, err)
	assert.True(t, processed)

	// The same reference is rejected even on a different user's history
	dup := &models.Transaction{Type: models.TransactionPurchase, Amount: 10000, Reference: &ref, Method: models.PaymentMethodGateway}
	err = repo.AppendTransaction(bob.ID, dup)
	assert.ErrorIs(t, err, repositories.ErrDuplicateReference)

	processed, err = repo.HasProcessedReference("MIDGATE-002")
	assert.NoError(t, err)
	assert.False(t, processed)
}

func TestMockUserRepository_CartMerge(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	user := newTestUser(t, repo, 0)

	assert.NoError(t, repo.UpsertCartLine(user.ID, models.CartLine{ProductID: "p1", Quantity: 2, Size: "M", Color: "red"}))
	assert.NoError(t, repo.UpsertCartLine(user.ID, models.CartLine{ProductID: "p1", Quantity: 1, Size: "M", Color: "red"}))
	assert.NoError(t, repo.UpsertCartLine(user.ID, models.CartLine{ProductID: "p1", Quantity: 1, Size: "L", Color: "red"}))

	cart, err := repo.GetCart(user.ID)
	assert.NoError(t, err)
	assert.Len(t, cart, 2)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.Equal(t, "M", cart[0].Size)
	assert.Equal(t, 1, cart[1].Quantity)
	assert.Equal(t, "L", cart[1].Size)

	// Quantity updates and removal by merge identity
	assert.NoError(t, repo.SetCartLineQuantity(user.ID, "p1", "M", "red", 5))
	cart, _ = repo.GetCart(user.ID)
	assert.Equal(t, 5, cart[0].Quantity)

	assert.NoError(t, repo.RemoveCartLine(user.ID, "p1", "L", "red"))
	cart, _ = repo.GetCart(user.ID)
	assert.Len(t, cart, 1)

	assert.NoError(t, repo.ClearCart(user.ID))
	cart, _ = repo.GetCart(user.ID)
	assert.Empty(t, cart)
}

func TestMockOrderRepository_TransitionStatus(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	order := &models.Order{UserID: "u1", Status: models.OrderStatusPending, Total: 1000}
	assert.NoError(t, repo.Create(order))

	// pending -> cancelled succeeds once
	cancelled, err := repo.TransitionStatus(order.ID, models.OrderStatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	// A second cancellation deterministically fails
	_, err = repo.TransitionStatus(order.ID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)

	_, err = repo.TransitionStatus("missing", models.OrderStatusCancelled)
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
}
