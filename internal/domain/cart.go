package domain

import "time"

// CartLine is one customer cart entry, unique per (customer, product, size).
// PriceAtAdding is the variant price in cents captured when the line was
// created; later catalog price changes never mutate existing lines.
type CartLine struct {
	ID            string    `bson:"_id" json:"id"`
	Customer      string    `bson:"customer" json:"customer"`
	Product       string    `bson:"product" json:"product"`
	Size          string    `bson:"size" json:"size"`
	Quantity      int       `bson:"quantity" json:"quantity"`
	PriceAtAdding int64     `bson:"price_at_adding" json:"price_at_adding"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

func (l *CartLine) GetID() string { return l.ID }

// RemovedCartLine is an append-only ledger record written before a cart line
// is deleted. PriceAtRemoving mirrors the line's PriceAtAdding, not the
// current catalog price.
type RemovedCartLine struct {
	ID              string    `bson:"_id" json:"id"`
	Customer        string    `bson:"customer" json:"customer"`
	Product         string    `bson:"product" json:"product"`
	Size            string    `bson:"size" json:"size"`
	Quantity        int       `bson:"quantity" json:"quantity"`
	PriceAtRemoving int64     `bson:"price_at_removing" json:"price_at_removing"`
	RemovedAt       time.Time `bson:"removed_at" json:"removed_at"`
}

func (r *RemovedCartLine) GetID() string { return r.ID }

// Removal snapshots the line into a ledger record with a fresh id.
func (l *CartLine) Removal(id string, removedAt time.Time) RemovedCartLine {
	return RemovedCartLine{
		ID:              id,
		Customer:        l.Customer,
		Product:         l.Product,
		Size:            l.Size,
		Quantity:        l.Quantity,
		PriceAtRemoving: l.PriceAtAdding,
		RemovedAt:       removedAt,
	}
}

// ProductRef is the catalog display projection joined onto cart views.
type ProductRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MainImage string `json:"main_image,omitempty"`
}

// SizeRef is the size display projection joined onto cart views.
type SizeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartLineView is a cart line with catalog display data populated. Product
// or Size may carry only the id when the referenced document no longer
// exists.
type CartLineView struct {
	ID            string     `json:"id"`
	Product       ProductRef `json:"product"`
	Size          SizeRef    `json:"size"`
	Quantity      int        `json:"quantity"`
	PriceAtAdding int64      `json:"price_at_adding"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CustomerSummary identifies a customer in admin groupings.
type CustomerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CustomerCart groups one customer's cart lines for the admin listing.
type CustomerCart struct {
	Customer CustomerSummary `json:"customer"`
	Items    []CartLineView  `json:"items"`
}

// RemovedLineView is a ledger record with catalog display data populated.
type RemovedLineView struct {
	ID              string     `json:"id"`
	Product         ProductRef `json:"product"`
	Size            SizeRef    `json:"size"`
	Quantity        int        `json:"quantity"`
	PriceAtRemoving int64      `json:"price_at_removing"`
	RemovedAt       time.Time  `json:"removed_at"`
}

// CustomerRemovedItems groups one customer's removal ledger for the admin
// listing.
type CustomerRemovedItems struct {
	Customer     CustomerSummary   `json:"customer"`
	RemovedItems []RemovedLineView `json:"removed_items"`
}
