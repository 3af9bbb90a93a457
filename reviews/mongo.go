package reviews

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
	return &MongoRepo{collection: database.Collection(db.ReviewsCollection)}
}

func (r *MongoRepo) Insert(ctx context.Context, rv *models.Review) error {
	if _, err := r.collection.InsertOne(ctx, rv); err != nil {
		if db.IsDuplicateKeyError(err) {
			return apperr.Conflict("you have already reviewed this meal")
		}
		return apperr.Dependency("failed to insert review", err)
	}
	return nil
}

func (r *MongoRepo) FindByID(ctx context.Context, id string) (*models.Review, error) {
	var rv models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("review not found")
		}
		return nil, apperr.Dependency("failed to load review", err)
	}
	return &rv, nil
}

func (r *MongoRepo) ListByMeal(ctx context.Context, mealID string, p utils.Page) ([]models.Review, int64, error) {
	filter := bson.M{"mealId": mealID}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to count reviews", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to retrieve reviews", err)
	}
	defer cursor.Close(ctx)

	var out []models.Review
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, apperr.Dependency("failed to decode reviews", err)
	}
	return out, total, nil
}

// ListByAuthor joins each review with the name and image of its meal.
func (r *MongoRepo) ListByAuthor(ctx context.Context, email string, p utils.Page) ([]models.ReviewWithMeal, int64, error) {
	match := bson.M{"reviewerEmail": email}
	total, err := r.collection.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to count reviews", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: p.Skip()}},
		{{Key: "$limit", Value: int64(p.Limit)}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: db.MealsCollection},
			{Key: "localField", Value: "mealId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "meal"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$meal"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "mealName", Value: "$meal.name"},
			{Key: "mealImage", Value: "$meal.image"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "meal", Value: 0}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to retrieve reviews", err)
	}
	defer cursor.Close(ctx)

	var out []models.ReviewWithMeal
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, apperr.Dependency("failed to decode reviews", err)
	}
	return out, total, nil
}

func (r *MongoRepo) UpdateOwned(ctx context.Context, id, email string, p Patch) (*models.Review, error) {
	set := bson.M{"updatedAt": time.Now()}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.Comment != nil {
		set["comment"] = *p.Comment
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rv models.Review
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "reviewerEmail": email},
		bson.M{"$set": set},
		opts,
	).Decode(&rv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Dependency("failed to update review", err)
	}
	return &rv, nil
}

func (r *MongoRepo) DeleteOwned(ctx context.Context, id, email string) (*models.Review, error) {
	var rv models.Review
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id, "reviewerEmail": email}).Decode(&rv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Dependency("failed to delete review", err)
	}
	return &rv, nil
}

func (r *MongoRepo) Stats(ctx context.Context, mealID string) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"mealId": mealID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$mealId"},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, apperr.Dependency("failed to aggregate ratings", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, apperr.Dependency("failed to decode ratings", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Avg, rows[0].Count, nil
}
