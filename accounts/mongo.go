package accounts

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
	return &MongoRepo{collection: database.Collection(db.AccountsCollection)}
}

func (r *MongoRepo) Insert(ctx context.Context, a *models.Account) error {
	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		if db.IsDuplicateKeyError(err) {
			return apperr.Conflict("account already exists")
		}
		return apperr.Dependency("failed to create account", err)
	}
	return nil
}

func (r *MongoRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, apperr.Dependency("failed to load account", err)
	}
	return &a, nil
}

func (r *MongoRepo) ChefIDExists(ctx context.Context, chefID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"chefId": chefID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoRepo) Transition(ctx context.Context, email string, cond Condition, upd Update) (*models.Account, error) {
	filter := bson.M{"email": email}
	role := bson.M{}
	if cond.Role != "" {
		role["$eq"] = cond.Role
	}
	if cond.NotRole != "" {
		role["$ne"] = cond.NotRole
	}
	if len(role) > 0 {
		filter["role"] = role
	}
	status := bson.M{}
	if cond.Status != "" {
		status["$eq"] = cond.Status
	}
	if cond.NotStatus != "" {
		status["$ne"] = cond.NotStatus
	}
	if len(status) > 0 {
		filter["status"] = status
	}

	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}
	if upd.Role != "" {
		set["role"] = upd.Role
	}
	if upd.Status != "" {
		set["status"] = upd.Status
	}
	if upd.ChefID != "" {
		set["chefId"] = upd.ChefID
	}
	if upd.ChefRequestedAt != nil {
		set["chefRequestedAt"] = upd.ChefRequestedAt
	}
	if upd.ChefApprovedAt != nil {
		set["chefApprovedAt"] = upd.ChefApprovedAt
	}
	if upd.AdminRequestedAt != nil {
		set["adminRequestedAt"] = upd.AdminRequestedAt
	}
	if upd.AdminApprovedAt != nil {
		set["adminApprovedAt"] = upd.AdminApprovedAt
	}
	if upd.ClearChefRequest {
		unset["chefRequestedAt"] = ""
	}
	if upd.ClearAdminRequest {
		unset["adminRequestedAt"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var a models.Account
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if db.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("chef id already assigned")
		}
		return nil, apperr.Dependency("failed to update account", err)
	}
	return &a, nil
}

func (r *MongoRepo) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (*models.Account, error) {
	set := bson.M{"updatedAt": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}

	var a models.Account
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": set}, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, apperr.Dependency("failed to update profile", err)
	}
	return &a, nil
}

func (r *MongoRepo) List(ctx context.Context, f ListFilter, p utils.Page) ([]models.Account, int64, error) {
	filter := bson.M{}
	if len(f.Roles) == 1 {
		filter["role"] = f.Roles[0]
	} else if len(f.Roles) > 1 {
		filter["role"] = bson.M{"$in": f.Roles}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to count accounts", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to list accounts", err)
	}
	defer cursor.Close(ctx)

	var out []models.Account
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, apperr.Dependency("failed to decode accounts", err)
	}
	return out, total, nil
}
