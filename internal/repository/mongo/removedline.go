package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modacart/backend/internal/domain"
	apperrors "github.com/modacart/backend/pkg/errors"
)

const removedLinesCollection = "removed_cart_items"

// RemovedLineRepository appends to the removal ledger. The collection is
// write-once: records are never updated or deleted.
type RemovedLineRepository struct {
	coll *mongo.Collection
}

func NewRemovedLineRepository(db *mongo.Database) *RemovedLineRepository {
	return &RemovedLineRepository{coll: db.Collection(removedLinesCollection)}
}

func (r *RemovedLineRepository) Insert(ctx context.Context, rec *domain.RemovedCartLine) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return apperrors.Wrap(err, "insert removed line")
	}
	return nil
}

func (r *RemovedLineRepository) InsertMany(ctx context.Context, recs []domain.RemovedCartLine) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]any, len(recs))
	for i := range recs {
		docs[i] = recs[i]
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return apperrors.Wrap(err, "insert removed lines")
	}
	return nil
}

func (r *RemovedLineRepository) ListAll(ctx context.Context) ([]domain.RemovedCartLine, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "removed_at", Value: -1}}))
	if err != nil {
		return nil, apperrors.Wrap(err, "list removed lines")
	}
	defer cur.Close(ctx)

	recs := []domain.RemovedCartLine{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, apperrors.Wrap(err, "decode removed lines")
	}
	return recs, nil
}
