package pay

import (
	"context"

	"homedish/apperr"
	"homedish/db"
	"homedish/models"
	"homedish/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ledger is append-only. Entries are never updated.
type Ledger interface {
	Append(ctx context.Context, p *models.Payment) error
	ListByEmail(ctx context.Context, email string, p utils.Page) ([]models.Payment, int64, error)
}

type MongoLedger struct {
	collection *mongo.Collection
}

func NewMongoLedger(database *mongo.Database) *MongoLedger {
	return &MongoLedger{collection: database.Collection(db.PaymentsCollection)}
}

func (l *MongoLedger) Append(ctx context.Context, p *models.Payment) error {
	if _, err := l.collection.InsertOne(ctx, p); err != nil {
		return apperr.Dependency("failed to record payment", err)
	}
	return nil
}

func (l *MongoLedger) ListByEmail(ctx context.Context, email string, p utils.Page) ([]models.Payment, int64, error) {
	filter := bson.M{"email": email}
	total, err := l.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to count payments", err)
	}

	findOptions := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cur, err := l.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to list payments", err)
	}
	defer cur.Close(ctx)

	var out []models.Payment
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, apperr.Dependency("failed to decode payments", err)
	}
	return out, total, nil
}
