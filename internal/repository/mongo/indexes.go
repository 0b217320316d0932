package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories depend on. Safe to call
// on every startup; Mongo treats identical index definitions as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		cartLinesCollection: {
			{
				// One line per (customer, product, size); merges bump quantity
				// instead of inserting a second document.
				Keys: bson.D{
					{Key: "customer", Value: 1},
					{Key: "product", Value: 1},
					{Key: "size", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		removedLinesCollection: {
			{Keys: bson.D{{Key: "removed_at", Value: -1}}},
			{Keys: bson.D{{Key: "customer", Value: 1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
