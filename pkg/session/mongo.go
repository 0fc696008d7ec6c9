package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/depscope/pkg/cache"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	TTL        time.Duration
}

// MongoStore keeps snapshots as documents. Expiry is enforced by a TTL
// index on expires_at.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	ttl    time.Duration
}

type mongoSession struct {
	ID        string    `bson:"_id"`
	Source    string    `bson:"source"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	Data      []byte    `bson:"data"`
}

// NewMongoStore connects to MongoDB and ensures the TTL index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "depscope"
	}
	if cfg.Collection == "" {
		cfg.Collection = "sessions"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("%w: mongo: %v", cache.ErrUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: mongo: %v", cache.ErrUnavailable, err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("create ttl index: %w", err)
	}
	return &MongoStore{client: client, coll: coll, ttl: cfg.TTL}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var doc mongoSession
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", id, err)
	}
	// The TTL monitor runs periodically, so expired documents can linger.
	if time.Now().After(doc.ExpiresAt) {
		return nil, nil
	}
	snap, _, err := decode(doc.Data)
	return snap, err
}

func (s *MongoStore) Set(ctx context.Context, snap *Snapshot) error {
	data, err := encode(snap, s.ttl)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	doc := mongoSession{
		ID:        snap.ID,
		Source:    snap.Source,
		CreatedAt: snap.CreatedAt,
		ExpiresAt: time.Now().Add(s.ttl),
		Data:      data,
	}
	return cache.RetryWithBackoff(ctx, retryBase, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, doc, options.Replace().SetUpsert(true))
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return cache.Retryable(err)
		}
		return err
	})
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
