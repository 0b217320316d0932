package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/modacart/backend/internal/domain"
)

const (
	productsCollection = "products"
	sizesCollection    = "sizes"
	usersCollection    = "users"
)

// ProductRepository reads the product catalog through the generic store.
type ProductRepository struct {
	*Store[*domain.Product]
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{Store: NewStore[*domain.Product](db, productsCollection, "product")}
}

// SizeRepository reads the size catalog through the generic store.
type SizeRepository struct {
	*Store[*domain.Size]
}

func NewSizeRepository(db *mongo.Database) *SizeRepository {
	return &SizeRepository{Store: NewStore[*domain.Size](db, sizesCollection, "size")}
}

// UserRepository reads user accounts through the generic store.
type UserRepository struct {
	*Store[*domain.User]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Store: NewStore[*domain.User](db, usersCollection, "user")}
}

// FindByEmail retrieves an active user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.FindOne(ctx, bson.M{"email": email})
}
