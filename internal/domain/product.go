package domain

import "time"

// Variant is one purchasable configuration of a product. Stock is tracked
// per variant; the cart engine reconciles requested quantities against it.
type Variant struct {
	Size  string `bson:"size" json:"size"`
	Color string `bson:"color,omitempty" json:"color,omitempty"`
	Price int64  `bson:"price" json:"price"`
	Stock int    `bson:"stock" json:"stock"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

type Product struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug,omitempty" json:"slug,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Brand       string    `bson:"brand,omitempty" json:"brand,omitempty"`
	Gender      string    `bson:"gender,omitempty" json:"gender,omitempty"`
	MainImage   string    `bson:"main_image,omitempty" json:"main_image,omitempty"`
	Images      []string  `bson:"images,omitempty" json:"images,omitempty"`
	Variants    []Variant `bson:"variants" json:"variants"`
	IsAvailable bool      `bson:"is_available" json:"is_available"`
	Status      Lifecycle `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func (p *Product) GetID() string { return p.ID }

// VariantBySize returns the first variant sold in the given size, or nil
// when the product has no such variant.
func (p *Product) VariantBySize(sizeID string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Size == sizeID {
			return &p.Variants[i]
		}
	}
	return nil
}

// Ref projects the product to its cart display fields.
func (p *Product) Ref() ProductRef {
	return ProductRef{ID: p.ID, Name: p.Name, MainImage: p.MainImage}
}

type Size struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	SortOrder int       `bson:"sort_order,omitempty" json:"sort_order,omitempty"`
	Status    Lifecycle `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (s *Size) GetID() string { return s.ID }

// Ref projects the size to its cart display fields.
func (s *Size) Ref() SizeRef {
	return SizeRef{ID: s.ID, Name: s.Name}
}
