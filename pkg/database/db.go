package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Config struct {
	URI  string
	Name string
}

// Conn is the process-wide handle on the anime database. It is opened once
// in main and passed to every repo that needs it.
type Conn struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func Open(ctx context.Context, cfg Config) (*Conn, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Conn{Client: client, DB: client.Database(cfg.Name)}, nil
}

func MustOpen(ctx context.Context, cfg Config, logger *zap.Logger) *Conn {
	conn, err := Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open db", zap.String("db", cfg.Name), zap.Error(err))
	}
	return conn
}

func (c *Conn) Close(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx, nil)
}

func (c *Conn) Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error) {
	cur, err := c.DB.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	out := make([]bson.M, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return out, nil
}

// FindOne returns mongo.ErrNoDocuments (wrapped) when nothing matches.
func (c *Conn) FindOne(ctx context.Context, collection string, filter bson.D) (bson.M, error) {
	var doc bson.M
	if err := c.DB.Collection(collection).FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, fmt.Errorf("find one in %s: %w", collection, err)
	}
	return doc, nil
}

func (c *Conn) Distinct(ctx context.Context, collection, field string) ([]any, error) {
	values, err := c.DB.Collection(collection).Distinct(ctx, field, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
	}
	return values, nil
}
