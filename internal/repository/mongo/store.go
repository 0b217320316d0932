package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modacart/backend/internal/domain"
	apperrors "github.com/modacart/backend/pkg/errors"
)

// Document is implemented by every domain type persisted through Store.
type Document interface {
	GetID() string
}

// Store is a generic, lifecycle-aware collection accessor. Reads exclude
// soft-deleted documents; Delete marks documents deleted instead of removing
// them, keeping the data available for audit and restore.
type Store[T Document] struct {
	coll     *mongo.Collection
	resource string
}

// NewStore returns a store over the named collection. resource is the
// human-readable name used in not-found errors ("product", "user").
func NewStore[T Document](db *mongo.Database, collection, resource string) *Store[T] {
	return &Store[T]{coll: db.Collection(collection), resource: resource}
}

// activeFilter narrows a filter to documents that are not soft-deleted.
func (s *Store[T]) activeFilter(filter bson.M) bson.M {
	if filter == nil {
		filter = bson.M{}
	}
	filter["status"] = bson.M{"$ne": string(domain.LifecycleDeleted)}
	return filter
}

// Insert creates the document. A duplicate key on any unique index maps to
// an already-exists error.
func (s *Store[T]) Insert(ctx context.Context, doc T) error {
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists(s.resource, "id", doc.GetID())
		}
		return apperrors.Wrap(err, fmt.Sprintf("insert %s", s.resource))
	}
	return nil
}

// FindByID retrieves an active document by id.
func (s *Store[T]) FindByID(ctx context.Context, id string) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id})
}

// FindOne retrieves the first active document matching the filter.
func (s *Store[T]) FindOne(ctx context.Context, filter bson.M) (T, error) {
	var doc T
	err := s.coll.FindOne(ctx, s.activeFilter(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, apperrors.NotFoundMsg(fmt.Sprintf("%s not found", s.resource))
		}
		return doc, apperrors.Wrap(err, fmt.Sprintf("find %s", s.resource))
	}
	return doc, nil
}

// Find retrieves all active documents matching the filter.
func (s *Store[T]) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := s.coll.Find(ctx, s.activeFilter(filter), opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, fmt.Sprintf("find %s", s.resource))
	}
	defer cur.Close(ctx)

	var docs []T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.Wrap(err, fmt.Sprintf("decode %s", s.resource))
	}
	return docs, nil
}

// FindByIDs retrieves active documents for the given ids, keyed by id.
// Missing ids are absent from the result rather than an error.
func (s *Store[T]) FindByIDs(ctx context.Context, ids []string) (map[string]T, error) {
	out := make(map[string]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := s.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.GetID()] = d
	}
	return out, nil
}

// Update applies a $set update to an active document and returns the
// document as updated.
func (s *Store[T]) Update(ctx context.Context, id string, set bson.M) (T, error) {
	var doc T
	set["updated_at"] = time.Now().UTC()
	res := s.coll.FindOneAndUpdate(ctx,
		s.activeFilter(bson.M{"_id": id}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, apperrors.NotFoundMsg(fmt.Sprintf("%s not found", s.resource))
		}
		return doc, apperrors.Wrap(err, fmt.Sprintf("update %s", s.resource))
	}
	return doc, nil
}

// Delete soft-deletes an active document by flipping its lifecycle status.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		s.activeFilter(bson.M{"_id": id}),
		bson.M{"$set": bson.M{
			"status":     string(domain.LifecycleDeleted),
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return apperrors.Wrap(err, fmt.Sprintf("delete %s", s.resource))
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFoundMsg(fmt.Sprintf("%s not found", s.resource))
	}
	return nil
}

// Restore reactivates a soft-deleted document.
func (s *Store[T]) Restore(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(domain.LifecycleDeleted)},
		bson.M{"$set": bson.M{
			"status":     string(domain.LifecycleActive),
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return apperrors.Wrap(err, fmt.Sprintf("restore %s", s.resource))
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFoundMsg(fmt.Sprintf("%s not found", s.resource))
	}
	return nil
}
