package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ i.PathResultRepo = &PathResultRepo{}

type pathResultDoc struct {
	ID        string    `bson:"_id"`
	ClientID  string    `bson:"clientId,omitempty"`
	IsValid   bool      `bson:"isValid"`
	Seed      int64     `bson:"seed"`
	MoveCount int       `bson:"moveCount"`
	Composed  bool      `bson:"composed"`
	Receipt   []byte    `bson:"receipt"`
	Profile   string    `bson:"profile"`
	CreatedAt time.Time `bson:"createdAt"`
}

func toPathResultDoc(r *dmn.PathResult) (*pathResultDoc, error) {
	receipt, err := r.Receipt.MarshalBinary()
	if err != nil {
		return nil, err
	}
	doc := &pathResultDoc{
		ID:        r.ID.String(),
		IsValid:   r.IsValid,
		Seed:      int64(r.Seed),
		MoveCount: r.MoveCount,
		Composed:  r.Composed,
		Receipt:   receipt,
		Profile:   r.Profile.String(),
		CreatedAt: r.CreatedAt,
	}
	if r.ClientID != uuid.Nil {
		doc.ClientID = r.ClientID.String()
	}
	return doc, nil
}

func (d *pathResultDoc) result() (*dmn.PathResult, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("stored path result id: %w", err)
	}
	var client uuid.UUID
	if d.ClientID != "" {
		if client, err = uuid.Parse(d.ClientID); err != nil {
			return nil, fmt.Errorf("stored path result %s: %w", id, err)
		}
	}
	var receipt zkvm.Receipt
	if err := receipt.UnmarshalBinary(d.Receipt); err != nil {
		return nil, fmt.Errorf("stored path result %s: %w", id, err)
	}

	return &dmn.PathResult{
		ID:        id,
		ClientID:  client,
		IsValid:   d.IsValid,
		Seed:      uint32(d.Seed),
		MoveCount: d.MoveCount,
		Composed:  d.Composed,
		Receipt:   &receipt,
		Profile:   receipt.Profile,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

// PathResultRepo handles the persistence of path verification results.
type PathResultRepo struct {
	collection *mongo.Collection
}

// NewPathResultRepo creates a new PathResultRepo with the given MongoDB client, database name, and collection name.
func NewPathResultRepo(client *mongo.Client, dbName, collectionName string) *PathResultRepo {
	return &PathResultRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Save inserts a path result.
func (r *PathResultRepo) Save(ctx context.Context, result *dmn.PathResult) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	doc, err := toPathResultDoc(result)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: path result %s", dmn.ErrConflict, result.ID)
		}
		return fmt.Errorf("saving path result: %w", err)
	}
	return nil
}

// ByID retrieves a path result by its ID.
func (r *PathResultRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.PathResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var doc pathResultDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrNotFound
		}
		return nil, fmt.Errorf("loading path result: %w", err)
	}
	return doc.result()
}
