package models

import "gorm.io/gorm"

// User roles recognised by the authorization middleware.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a user of the store. Balance is the wallet balance in
// minor currency units and is never allowed to go negative; it is debited
// only through the conditional wallet operations. The user exclusively owns
// its cart lines and transaction history.
type User struct {
	ID           string        `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username     string        `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email        string        `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password     string        `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role         string        `json:"role" gorm:"type:varchar(20);default:customer" validate:"omitempty,oneof=customer admin"`
	Balance      int64         `json:"balance" validate:"gte=0"`
	Cart         []CartLine    `json:"cart,omitempty" gorm:"foreignKey:UserID"`
	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:UserID"`
	gorm.Model                 // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
