package orders

import (
	"context"
	"errors"
	"time"

	"homedish/apperr"
	"homedish/db"
	"homedish/models"
	"homedish/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(database *mongo.Database) *MongoRepo {
	return &MongoRepo{collection: database.Collection(db.OrdersCollection)}
}

func (r *MongoRepo) Insert(ctx context.Context, o *models.Order) error {
	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		return apperr.Dependency("failed to create order", err)
	}
	return nil
}

func (r *MongoRepo) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Dependency("failed to load order", err)
	}
	return &o, nil
}

func (r *MongoRepo) Transition(ctx context.Context, id string, cond Condition, upd Update) (*models.Order, error) {
	filter := bson.M{"_id": id}
	if cond.Status != "" {
		filter["orderStatus"] = cond.Status
	}
	switch {
	case cond.Unpaid:
		filter["paymentStatus"] = bson.M{"$ne": models.PaymentPaid}
	case cond.Paid:
		filter["paymentStatus"] = models.PaymentPaid
	}
	if cond.ChefID != "" {
		filter["chefId"] = cond.ChefID
	}
	if cond.ChefEmail != "" {
		filter["chefEmail"] = cond.ChefEmail
	}
	if cond.UserEmail != "" {
		filter["userEmail"] = cond.UserEmail
	}

	set := bson.M{}
	if upd.Status != "" {
		set["orderStatus"] = upd.Status
	}
	if upd.Payment != "" {
		set["paymentStatus"] = upd.Payment
	}
	if upd.TransactionID != "" {
		set["transactionId"] = upd.TransactionID
	}
	for field, at := range map[string]*time.Time{
		"acceptedAt":  upd.AcceptedAt,
		"cancelledAt": upd.CancelledAt,
		"paidAt":      upd.PaidAt,
		"deliveredAt": upd.DeliveredAt,
	} {
		if at != nil {
			set[field] = *at
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o models.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Dependency("failed to update order", err)
	}
	return &o, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, email string, status models.OrderStatus, p utils.Page) ([]models.Order, int64, error) {
	return r.list(ctx, bson.M{"userEmail": email}, status, p)
}

func (r *MongoRepo) ListByChef(ctx context.Context, chefID string, status models.OrderStatus, p utils.Page) ([]models.Order, int64, error) {
	return r.list(ctx, bson.M{"chefId": chefID}, status, p)
}

func (r *MongoRepo) list(ctx context.Context, filter bson.M, status models.OrderStatus, p utils.Page) ([]models.Order, int64, error) {
	if status != "" {
		filter["orderStatus"] = status
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to count orders", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "orderTime", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to list orders", err)
	}
	defer cursor.Close(ctx)

	var out []models.Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, apperr.Dependency("failed to decode orders", err)
	}
	return out, total, nil
}

func (r *MongoRepo) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$orderStatus"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Dependency("failed to aggregate orders", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.OrderStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, apperr.Dependency("failed to decode order counts", err)
	}
	out := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
