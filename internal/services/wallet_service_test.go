package services_test

import (
	"testing"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestWalletService_DepositAndHistory(t *testing.T) {
	userRepo := repositories.NewMockUserRepository()
	svc := services.NewWalletService(userRepo)

	user := &models.User{Username: "budi", Email: "budi@example.com", Password: "hashed"}
	assert.NoError(t, userRepo.Create(user))

	balance, err := svc.GetBalance(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	assert.NoError(t, svc.Deposit(user.ID, 500000))

	balance, err = svc.GetBalance(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(500000), balance)

	txns, err := svc.GetTransactions(user.ID)
	assert.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Equal(t, models.TransactionDeposit, txns[0].Type)
	assert.Equal(t, int64(500000), txns[0].Amount)
	assert.Equal(t, models.TransactionSuccess, txns[0].Status)
}

func TestWalletService_DepositValidation(t *testing.T) {
	userRepo := repositories.NewMockUserRepository()
	svc := services.NewWalletService(userRepo)

	user := &models.User{Username: "budi", Email: "budi@example.com", Password: "hashed"}
	assert.NoError(t, userRepo.Create(user))

	assert.Error(t, svc.Deposit(user.ID, 0))
	assert.Error(t, svc.Deposit(user.ID, -100))

	err := svc.Deposit("missing-user", 1000)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	balance, _ := svc.GetBalance(user.ID)
	assert.Equal(t, int64(0), balance)
}
