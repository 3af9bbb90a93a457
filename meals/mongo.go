package meals

import (
	"context"
	"errors"
	"regexp"
	"time"

	"homedish/apperr"
	"homedish/db"
	"homedish/models"
	"homedish/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(database *mongo.Database) *MongoRepo {
	return &MongoRepo{collection: database.Collection(db.MealsCollection)}
}

func (r *MongoRepo) Insert(ctx context.Context, m *models.Meal) error {
	if _, err := r.collection.InsertOne(ctx, m); err != nil {
		return apperr.Dependency("failed to create meal", err)
	}
	return nil
}

func (r *MongoRepo) FindByID(ctx context.Context, id string) (*models.Meal, error) {
	var m models.Meal
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("meal not found")
		}
		return nil, apperr.Dependency("failed to load meal", err)
	}
	return &m, nil
}

func (r *MongoRepo) List(ctx context.Context, f Filter, p utils.Page) ([]models.Meal, int64, error) {
	query := bson.M{}
	if f.Search != "" {
		query["name"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}}
	}
	if f.ChefID != "" {
		query["chefId"] = f.ChefID
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	dir := -1
	if f.Asc {
		dir = 1
	}
	sort := bson.D{{Key: "createdAt", Value: dir}}
	switch f.Sort {
	case "price":
		sort = bson.D{{Key: "price", Value: dir}, {Key: "_id", Value: 1}}
	case "rating":
		sort = bson.D{{Key: "rating", Value: dir}, {Key: "_id", Value: 1}}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to count meals", err)
	}

	opts := options.Find().SetSort(sort).SetSkip(p.Skip()).SetLimit(int64(p.Limit))
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to list meals", err)
	}
	defer cursor.Close(ctx)

	var meals []models.Meal
	if err := cursor.All(ctx, &meals); err != nil {
		return nil, 0, apperr.Dependency("failed to decode meals", err)
	}
	return meals, total, nil
}

func (r *MongoRepo) UpdateOwned(ctx context.Context, id, chefID string, p Patch) (*models.Meal, error) {
	set := bson.M{"updatedAt": time.Now()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Ingredients != nil {
		set["ingredients"] = *p.Ingredients
	}
	if p.DeliveryTime != nil {
		set["estimatedDeliveryTime"] = *p.DeliveryTime
	}
	if p.ChefExperience != nil {
		set["chefExperience"] = *p.ChefExperience
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.Meal
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "chefId": chefID},
		bson.M{"$set": set},
		opts,
	).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Dependency("failed to update meal", err)
	}
	return &m, nil
}

func (r *MongoRepo) DeleteOwned(ctx context.Context, id, chefID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "chefId": chefID})
	if err != nil {
		return false, apperr.Dependency("failed to delete meal", err)
	}
	return res.DeletedCount == 1, nil
}

func (r *MongoRepo) SetRating(ctx context.Context, id string, rating float64, count int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"rating": rating, "reviewCount": count}},
	)
	if err != nil {
		return apperr.Dependency("failed to update meal rating", err)
	}
	return nil
}
