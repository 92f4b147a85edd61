package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/observability"
)

// MongoStore persists pages in a MongoDB collection. ReplaceOne with upsert
// implements the full-replacement write contract directly: the stored
// document is always the complete page, never a patch.
//
// Block content is a closed tagged union, so pages round-trip through their
// canonical JSON codec (see block.Block.UnmarshalJSON) and are stored as a
// raw payload next to the queryable summary fields. Every backend therefore
// shares one content-narrowing path.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures a MongoDB connection.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // e.g. "pagedeck"
	Collection string // defaults to "pages"
}

// mongoDoc is the stored shape of a page.
type mongoDoc struct {
	ID         string    `bson:"_id"`
	Title      string    `bson:"title"`
	Tags       []string  `bson:"tags,omitempty"`
	BlockCount int       `bson:"block_count"`
	Doc        []byte    `bson:"doc"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Collection == "" {
		cfg.Collection = "pages"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.URI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping %s: %w", cfg.URI, err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get retrieves a page by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*block.Page, error) {
	start := time.Now()
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observability.Store().OnGet(ctx, id, time.Since(start), ErrNotFound)
		return nil, ErrNotFound
	}
	if err != nil {
		observability.Store().OnGet(ctx, id, time.Since(start), err)
		return nil, err
	}

	var p block.Page
	if err := json.Unmarshal(doc.Doc, &p); err != nil {
		err = fmt.Errorf("decode page %s: %w", id, err)
		observability.Store().OnGet(ctx, id, time.Since(start), err)
		return nil, err
	}
	observability.Store().OnGet(ctx, id, time.Since(start), nil)
	return &p, nil
}

// Put writes the page as a full replacement, creating it if absent.
func (s *MongoStore) Put(ctx context.Context, p *block.Page) error {
	start := time.Now()
	err := s.put(ctx, p)
	observability.Store().OnPut(ctx, p.ID, len(p.Blocks), time.Since(start), err)
	return err
}

func (s *MongoStore) put(ctx context.Context, p *block.Page) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode page %s: %w", p.ID, err)
	}
	doc := mongoDoc{
		ID:         p.ID,
		Title:      p.Title,
		Tags:       p.Tags,
		BlockCount: len(p.Blocks),
		Doc:        raw,
		UpdatedAt:  time.Now().UTC(),
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// Delete removes a page.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err == nil && res.DeletedCount == 0 {
		err = ErrNotFound
	}
	observability.Store().OnDelete(ctx, id, time.Since(start), err)
	return err
}

// List returns summaries of all pages sorted by title. Block payloads are
// excluded by projection.
func (s *MongoStore) List(ctx context.Context) ([]PageInfo, error) {
	opts := options.Find().
		SetProjection(bson.M{"doc": 0}).
		SetSort(bson.D{{Key: "title", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []PageInfo
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, PageInfo{
			ID:         doc.ID,
			Title:      doc.Title,
			BlockCount: doc.BlockCount,
			Tags:       doc.Tags,
		})
	}
	return out, cur.Err()
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
