package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ReportsCollection       = "reports"
	UsersCollection         = "users"
	VerificationsCollection = "verifications"
)

// ConnectDB connects to MongoDB, pings it and makes sure the indexes the stores rely on exist.
func ConnectDB(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

// EnsureIndexes creates the 2dsphere location index used by $near queries plus the
// listing and lookup indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	reports := db.Collection(ReportsCollection)
	_, err := reports.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("report indexes: %w", err)
	}

	users := db.Collection(UsersCollection)
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	// Not unique: a user may confirm the same report more than once.
	verifications := db.Collection(VerificationsCollection)
	if _, err := verifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "report", Value: 1}, {Key: "user", Value: 1}},
	}); err != nil {
		return fmt.Errorf("verification indexes: %w", err)
	}
	return nil
}
