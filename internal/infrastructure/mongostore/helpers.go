package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
)

// wrapError maps driver errors onto the repository sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repo.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repo.ErrDuplicate
	}
	return err
}

// findOne decodes a single document; a missing document is (nil, nil).
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	var result T
	err := col.FindOne(ctx, filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	return &result, nil
}

func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// upsertFields $sets every field of record on the document with id, creating
// it when missing. Nil pointers are written as explicit nulls.
func upsertFields(ctx context.Context, col *mongo.Collection, id string, record any) error {
	fields, err := toSetDoc(record)
	if err != nil {
		return err
	}
	update := bson.D{{Key: "$set", Value: fields}}
	if len(fields) == 0 {
		update = bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "_id", Value: id}}}}
	}
	_, err = col.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update, options.UpdateOne().SetUpsert(true))
	return wrapError(err)
}

func toSetDoc(record any) (bson.D, error) {
	b, err := bson.Marshal(record)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	out := doc[:0]
	for _, e := range doc {
		if e.Key != "_id" {
			out = append(out, e)
		}
	}
	return out, nil
}

// fieldName maps the public "id" field onto the document key.
func fieldName(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}
