package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a tagged variant over Role: customer-specific data lives under
// Customer and is nil for admins, so an admin document never carries empty
// customer fields.
type User struct {
	ID           string           `bson:"_id" json:"id"`
	Name         string           `bson:"name" json:"name"`
	Email        string           `bson:"email" json:"email"`
	PasswordHash string           `bson:"password_hash" json:"-"`
	Role         string           `bson:"role" json:"role"`
	Customer     *CustomerProfile `bson:"customer,omitempty" json:"customer,omitempty"`
	Status       Lifecycle        `bson:"status" json:"status"`
	CreatedAt    time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `bson:"updated_at" json:"updated_at"`
}

func (u *User) GetID() string { return u.ID }

// Summary projects the user to the fields shown in admin cart groupings.
func (u *User) Summary() CustomerSummary {
	return CustomerSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// CustomerProfile holds the customer-only payload of a User.
type CustomerProfile struct {
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Addresses []Address `bson:"addresses,omitempty" json:"addresses,omitempty"`
}

// Address is soft-deleted via Status rather than overwritten in place, so
// orders that referenced it keep a stable snapshot.
type Address struct {
	ID         string    `bson:"id" json:"id"`
	Label      string    `bson:"label,omitempty" json:"label,omitempty"`
	Street     string    `bson:"street" json:"street"`
	City       string    `bson:"city" json:"city"`
	PostalCode string    `bson:"postal_code" json:"postal_code"`
	Country    string    `bson:"country" json:"country"`
	IsDefault  bool      `bson:"is_default" json:"is_default"`
	Status     Lifecycle `bson:"status" json:"status"`
}
