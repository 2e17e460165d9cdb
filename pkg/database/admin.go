package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

func (c *Conn) ListCollectionNames(ctx context.Context) ([]string, error) {
	names, err := c.DB.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

func (c *Conn) CollectionStats(ctx context.Context, name string) (bson.M, error) {
	var stats bson.M
	if err := c.DB.RunCommand(ctx, bson.D{{Key: "collStats", Value: name}}).Decode(&stats); err != nil {
		return nil, fmt.Errorf("collStats %s: %w", name, err)
	}
	return stats, nil
}

func (c *Conn) IndexSpecs(ctx context.Context, name string) ([]bson.M, error) {
	cur, err := c.DB.Collection(name).Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes %s: %w", name, err)
	}
	defer cur.Close(ctx)

	var specs []bson.M
	if err := cur.All(ctx, &specs); err != nil {
		return nil, fmt.Errorf("decode indexes %s: %w", name, err)
	}
	return specs, nil
}

// ListShards runs listShards against the admin database. It fails on a
// deployment that is not a sharded cluster.
func (c *Conn) ListShards(ctx context.Context) ([]bson.M, error) {
	var res struct {
		Shards []bson.M `bson:"shards"`
	}
	if err := c.Client.Database("admin").RunCommand(ctx, bson.D{{Key: "listShards", Value: 1}}).Decode(&res); err != nil {
		return nil, fmt.Errorf("listShards: %w", err)
	}
	return res.Shards, nil
}
