package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	AccountsCollection    = "users"
	MealsCollection       = "meals"
	OrdersCollection      = "orders"
	PaymentsCollection    = "payments"
	ReviewsCollection     = "reviews"
	FavoritesCollection   = "favorites"
	IdempotencyCollection = "idempotency"
)

// Store owns the Mongo client. Repositories receive the database handle.
type Store struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, name string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	log.Printf("Connected to MongoDB database %q", name)
	return &Store{Client: client, Database: client.Database(name)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique keys the state machines rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		AccountsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_email")},
			{Keys: bson.D{{Key: "chefId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true).SetName("unique_chef_id")},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("role_status")},
		},
		MealsCollection: {
			{Keys: bson.D{{Key: "chefId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("chef_created")},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "orderTime", Value: -1}}, Options: options.Index().SetName("user_time")},
			{Keys: bson.D{{Key: "chefId", Value: 1}, {Key: "orderTime", Value: -1}}, Options: options.Index().SetName("chef_time")},
		},
		PaymentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("email_created")},
			{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetName("order")},
		},
		ReviewsCollection: {
			{Keys: bson.D{{Key: "mealId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("meal_created")},
			{Keys: bson.D{{Key: "reviewerEmail", Value: 1}, {Key: "mealId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_reviewer_meal")},
		},
		FavoritesCollection: {
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "mealId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_user_meal")},
		},
		IdempotencyCollection: {
			{Keys: bson.M{"key": 1}, Options: options.Index().SetUnique(true).SetName("unique_key")},
			{Keys: bson.M{"expires_at": 1}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
		},
	}

	for coll, idxs := range specs {
		if _, err := s.Database.Collection(coll).Indexes().CreateMany(ctx, idxs); err != nil {
			return fmt.Errorf("cannot create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// IsDuplicateKeyError reports a unique index violation (code 11000).
func IsDuplicateKeyError(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err)
}
