package models

import "time"

// TransactionType classifies a wallet transaction.
type TransactionType string

const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionPurchase TransactionType = "purchase"
	TransactionRefund   TransactionType = "refund"
)

// TransactionStatus is the outcome recorded for a transaction.
type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
	TransactionPending TransactionStatus = "PENDING"
)

// PaymentMethod is how an order or transaction was paid.
type PaymentMethod string

const (
	PaymentMethodWallet  PaymentMethod = "wallet"
	PaymentMethodGateway PaymentMethod = "gateway"
)

// Transaction is one entry in a user's append-only transaction history.
// Reference carries the external payment reference when the money was
// settled by the gateway; the unique index is what makes applying the same
// external payment twice impossible.
type Transaction struct {
	ID        string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string            `json:"-" gorm:"index;type:varchar(36)"`
	Type      TransactionType   `json:"type" gorm:"type:varchar(20)"`
	Amount    int64             `json:"amount"`
	Status    TransactionStatus `json:"status" gorm:"type:varchar(10)"`
	Method    PaymentMethod     `json:"method" gorm:"type:varchar(20)"`
	Reference *string           `json:"reference,omitempty" gorm:"uniqueIndex;type:varchar(100)"`
	Items     []OrderItem       `json:"items,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time         `json:"created_at"`
}
