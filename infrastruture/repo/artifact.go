package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ i.ArtifactRepo = &ArtifactRepo{}

// artifactDoc is the stored form of a maze artifact. The grid is not stored, it is
// regenerated from the seed on load.
type artifactDoc struct {
	Seed       int64     `bson:"_id"`
	Commitment string    `bson:"commitment"`
	Receipt    []byte    `bson:"receipt"`
	Profile    string    `bson:"profile"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func toArtifactDoc(a *dmn.MazeArtifact) (*artifactDoc, error) {
	receipt, err := a.Receipt.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &artifactDoc{
		Seed:       int64(a.Seed),
		Commitment: a.Commitment.String(),
		Receipt:    receipt,
		Profile:    a.Profile.String(),
		CreatedAt:  a.CreatedAt,
	}, nil
}

func (d *artifactDoc) artifact() (*dmn.MazeArtifact, error) {
	if d.Seed < 0 || d.Seed > int64(^uint32(0)) {
		return nil, fmt.Errorf("stored artifact has seed %d", d.Seed)
	}
	seed := uint32(d.Seed)

	commitment, err := maze.ParseCommitment(d.Commitment)
	if err != nil {
		return nil, fmt.Errorf("stored artifact of seed %d: %w", seed, err)
	}
	var receipt zkvm.Receipt
	if err := receipt.UnmarshalBinary(d.Receipt); err != nil {
		return nil, fmt.Errorf("stored artifact of seed %d: %w", seed, err)
	}
	grid, err := maze.Regenerate(seed)
	if err != nil {
		return nil, err
	}
	return dmn.NewMazeArtifact(seed, grid, commitment, &receipt, d.CreatedAt)
}

// ArtifactRepo handles the persistence of maze artifacts.
type ArtifactRepo struct {
	collection *mongo.Collection
}

// NewArtifactRepo creates a new ArtifactRepo with the given MongoDB client, database name, and collection name.
func NewArtifactRepo(client *mongo.Client, dbName, collectionName string) *ArtifactRepo {
	return &ArtifactRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Save inserts an artifact. A seed is stored once.
func (r *ArtifactRepo) Save(ctx context.Context, a *dmn.MazeArtifact) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	doc, err := toArtifactDoc(a)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: artifact of seed %d", dmn.ErrConflict, a.Seed)
		}
		return fmt.Errorf("saving artifact: %w", err)
	}
	return nil
}

// BySeed retrieves the artifact of seed with its grid regenerated.
func (r *ArtifactRepo) BySeed(ctx context.Context, seed uint32) (*dmn.MazeArtifact, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var doc artifactDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": int64(seed)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrNotFound
		}
		return nil, fmt.Errorf("loading artifact: %w", err)
	}
	return doc.artifact()
}
