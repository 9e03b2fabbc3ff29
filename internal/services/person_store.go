package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/prefeitura-rio/app-matriculas/internal/models"
	"github.com/prefeitura-rio/app-matriculas/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PersonStore persists person records.
// Write errors are returned wrapped so callers can detect duplicate keys
// with mongo.IsDuplicateKeyError.
type PersonStore interface {
	Insert(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
	// FindByCPF returns the person holding the canonical CPF, ignoring
	// excludeID when it is not zero. It returns nil when there is none.
	FindByCPF(ctx context.Context, cpf string, excludeID primitive.ObjectID) (*models.Person, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Person, error)
	List(ctx context.Context, tenantID string, page, perPage int) ([]models.Person, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoPersonStore is the PersonStore backed by a MongoDB collection
type MongoPersonStore struct {
	collection *mongo.Collection
}

// NewMongoPersonStore creates a store over the given collection
func NewMongoPersonStore(collection *mongo.Collection) *MongoPersonStore {
	return &MongoPersonStore{collection: collection}
}

func recordOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.DatabaseOperations.WithLabelValues(operation, status).Inc()
}

// Insert stores a new person, assigning an ID when it has none
func (s *MongoPersonStore) Insert(ctx context.Context, person *models.Person) error {
	if person.ID.IsZero() {
		person.ID = primitive.NewObjectID()
	}

	_, err := s.collection.InsertOne(ctx, person)
	recordOperation("insert", err)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// Update replaces the stored document. A nil CPF removes the field.
func (s *MongoPersonStore) Update(ctx context.Context, person *models.Person) error {
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": person.ID}, person)
	recordOperation("update", err)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrPersonNotFound
	}
	return nil
}

func (s *MongoPersonStore) FindByCPF(ctx context.Context, cpf string, excludeID primitive.ObjectID) (*models.Person, error) {
	filter := bson.M{"cpf": cpf}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	var person models.Person
	err := s.collection.FindOne(ctx, filter).Decode(&person)
	if errors.Is(err, mongo.ErrNoDocuments) {
		recordOperation("find_by_cpf", nil)
		return nil, nil
	}
	recordOperation("find_by_cpf", err)
	if err != nil {
		return nil, fmt.Errorf("failed to find person by CPF: %w", err)
	}
	return &person, nil
}

func (s *MongoPersonStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Person, error) {
	var person models.Person
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&person)
	if errors.Is(err, mongo.ErrNoDocuments) {
		recordOperation("get", nil)
		return nil, models.ErrPersonNotFound
	}
	recordOperation("get", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &person, nil
}

// List returns a page of a tenant's people, newest first, and the tenant total
func (s *MongoPersonStore) List(ctx context.Context, tenantID string, page, perPage int) ([]models.Person, int64, error) {
	filter := bson.M{"tenant_id": tenantID}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		recordOperation("list", err)
		return nil, 0, fmt.Errorf("failed to count people: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		recordOperation("list", err)
		return nil, 0, fmt.Errorf("failed to list people: %w", err)
	}
	defer cursor.Close(ctx)

	people := []models.Person{}
	err = cursor.All(ctx, &people)
	recordOperation("list", err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode people: %w", err)
	}
	return people, total, nil
}

func (s *MongoPersonStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	recordOperation("delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrPersonNotFound
	}
	return nil
}

// ScanCPFs calls fn for every document whose cpf is stored as a string
func (s *MongoPersonStore) ScanCPFs(ctx context.Context, fn func(StoredCPF) error) error {
	opts := options.Find().
		SetProjection(bson.M{"cpf": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.M{"cpf": bson.M{"$type": "string"}}, opts)
	recordOperation("scan_cpfs", err)
	if err != nil {
		return fmt.Errorf("failed to scan CPFs: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var record StoredCPF
		if err := cursor.Decode(&record); err != nil {
			return fmt.Errorf("failed to decode stored CPF: %w", err)
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// SetCPF overwrites the stored cpf of one record
func (s *MongoPersonStore) SetCPF(ctx context.Context, id primitive.ObjectID, cpf string) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"cpf": cpf}})
	recordOperation("set_cpf", err)
	if err != nil {
		return fmt.Errorf("failed to set CPF: %w", err)
	}
	return nil
}

// UnsetCPF removes the cpf field of one record
func (s *MongoPersonStore) UnsetCPF(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": bson.M{"cpf": ""}})
	recordOperation("unset_cpf", err)
	if err != nil {
		return fmt.Errorf("failed to unset CPF: %w", err)
	}
	return nil
}
