package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ i.ClientRepo = &ClientRepo{}

// ClientRepo handles the persistence of API clients.
type ClientRepo struct {
	collection *mongo.Collection
}

// NewClientRepo creates a new ClientRepo with the given MongoDB client, database name, and collection name.
func NewClientRepo(client *mongo.Client, dbName, collectionName string) *ClientRepo {
	return &ClientRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// EnsureIndexes creates the unique index on client names.
func (r *ClientRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Save inserts or updates a client in the repository.
func (r *ClientRepo) Save(ctx context.Context, client *dmn.Client) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	filter := bson.M{"_id": client.ID}
	update := bson.M{
		"$set": bson.M{
			"name":         client.Name,
			"passwordHash": client.PasswordHash,
			"credits":      client.Credits,
			"updatedAt":    time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: client name %q", dmn.ErrConflict, client.Name)
		}
		return fmt.Errorf("saving client: %w", err)
	}
	return nil
}

// ByID retrieves a client by its ID.
func (r *ClientRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Client, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// ByName retrieves a client by its name.
func (r *ClientRepo) ByName(ctx context.Context, name string) (*dmn.Client, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *ClientRepo) findOne(ctx context.Context, filter bson.M) (*dmn.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var client dmn.Client
	if err := r.collection.FindOne(ctx, filter).Decode(&client); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrNotFound
		}
		return nil, fmt.Errorf("loading client: %w", err)
	}
	return &client, nil
}

// ConsumeCredit decrements the credits of a client holding at least one.
func (r *ClientRepo) ConsumeCredit(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "credits": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"credits": -1}},
	)
	if err != nil {
		return fmt.Errorf("consuming credit: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	if _, err := r.ByID(ctx, id); err != nil {
		return err
	}
	return dmn.ErrNoCredits
}
