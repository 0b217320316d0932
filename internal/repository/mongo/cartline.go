package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modacart/backend/internal/domain"
	apperrors "github.com/modacart/backend/pkg/errors"
)

const cartLinesCollection = "cart_items"

// CartLineRepository persists active cart lines. Unlike catalog documents,
// lines are hard-deleted: removal history lives in the ledger collection.
type CartLineRepository struct {
	coll *mongo.Collection
}

func NewCartLineRepository(db *mongo.Database) *CartLineRepository {
	return &CartLineRepository{coll: db.Collection(cartLinesCollection)}
}

func (r *CartLineRepository) FindLine(ctx context.Context, customer, product, size string) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.coll.FindOne(ctx, bson.M{
		"customer": customer,
		"product":  product,
		"size":     size,
	}).Decode(&line)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFoundMsg("cart item not found")
		}
		return nil, apperrors.Wrap(err, "find cart line")
	}
	return &line, nil
}

func (r *CartLineRepository) FindByID(ctx context.Context, customer, id string) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "customer": customer}).Decode(&line)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFoundMsg("cart item not found")
		}
		return nil, apperrors.Wrap(err, "find cart line")
	}
	return &line, nil
}

func (r *CartLineRepository) ListByCustomer(ctx context.Context, customer string) ([]domain.CartLine, error) {
	return r.list(ctx, bson.M{"customer": customer})
}

func (r *CartLineRepository) ListAll(ctx context.Context) ([]domain.CartLine, error) {
	return r.list(ctx, bson.M{})
}

func (r *CartLineRepository) list(ctx context.Context, filter bson.M) ([]domain.CartLine, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, apperrors.Wrap(err, "list cart lines")
	}
	defer cur.Close(ctx)

	lines := []domain.CartLine{}
	if err := cur.All(ctx, &lines); err != nil {
		return nil, apperrors.Wrap(err, "decode cart lines")
	}
	return lines, nil
}

func (r *CartLineRepository) Insert(ctx context.Context, line *domain.CartLine) error {
	if _, err := r.coll.InsertOne(ctx, line); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("cart item", "product/size", line.Product+"/"+line.Size)
		}
		return apperrors.Wrap(err, "insert cart line")
	}
	return nil
}

func (r *CartLineRepository) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartLine, error) {
	var line domain.CartLine
	res := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":         bson.M{"quantity": quantity},
			"$currentDate": bson.M{"updated_at": true},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Decode(&line); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFoundMsg("cart item not found")
		}
		return nil, apperrors.Wrap(err, "update cart line quantity")
	}
	return &line, nil
}

func (r *CartLineRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Wrap(err, "delete cart line")
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFoundMsg("cart item not found")
	}
	return nil
}

func (r *CartLineRepository) DeleteByCustomer(ctx context.Context, customer string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"customer": customer})
	if err != nil {
		return 0, apperrors.Wrap(err, "clear cart")
	}
	return res.DeletedCount, nil
}
