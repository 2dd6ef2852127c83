package config

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

type MongoDBConfig struct {
	URI string
}

func NewMongoDBConfig() *MongoDBConfig {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		log.Fatal("DB uri not set")
	}
	return &MongoDBConfig{URI: uri}
}

type MongoDBClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBClient(lc fx.Lifecycle, config *MongoDBConfig) (*MongoDBClient, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(config.URI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	log.Println("Connected to MongoDB")

	db := client.Database("project_tracker")

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			return EnsureIndexes(startCtx, db)
		},
		OnStop: func(stopCtx context.Context) error {
			log.Println("Closing MongoDB connection ...")
			return client.Disconnect(stopCtx)
		},
	})
	return &MongoDBClient{Client: client, Database: db}, db, nil
}

// EnsureIndexes creates the indexes the application relies on: unique account
// email and registration number, the one-project-per-student constraint, the
// marks upsert key and the notification TTL expiry.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"accounts": {
			{Keys: bson.M{"email": 1}, Options: options.Index().SetUnique(true)},
			{Keys: bson.M{"reg_no": 1}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		"projects": {
			// One project per student, enforced at the storage layer rather
			// than by a check-then-insert in the service.
			{Keys: bson.M{"student_id": 1}, Options: options.Index().SetUnique(true)},
		},
		"project_marks": {
			{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "project_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"notifications": {
			{Keys: bson.M{"expires_at": 1}, Options: options.Index().SetExpireAfterSeconds(0).SetSparse(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	log.Println("MongoDB indexes ensured")
	return nil
}
