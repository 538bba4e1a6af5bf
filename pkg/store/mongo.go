package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/tilegrid/pkg/project"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per project, unique by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDoc wraps a project with bookkeeping fields.
type mongoDoc struct {
	project.Project `bson:",inline"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and ensures the name index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Collection == "" {
		cfg.Collection = "projects"
	}
	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	err = retry(ctx, connectAttempts, connectDelay, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return &retryableError{err}
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create mongo index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Get returns the named project.
func (s *MongoStore) Get(ctx context.Context, name string) (*project.Project, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get: %w", err)
	}
	p := doc.Project
	if p.Tiles == nil {
		p.Tiles = []project.Tile{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Put upserts the project by name.
func (s *MongoStore) Put(ctx context.Context, p *project.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	doc := mongoDoc{Project: *p, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"name": p.Name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo put: %w", err)
	}
	return nil
}

// Delete removes the named project.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the stored project names in ascending order.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "name", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
