// Package favorites stores the meals a customer has bookmarked.
package favorites

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"homedish/apperr"
	"homedish/db"
	"homedish/models"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repo interface {
	// Insert fails with Conflict when the (user, meal) pair exists.
	Insert(ctx context.Context, f *models.Favorite) error
	FindByID(ctx context.Context, id string) (*models.Favorite, error)
	ListByUser(ctx context.Context, email string, p utils.Page) ([]models.Favorite, int64, error)
	DeleteOwned(ctx context.Context, id, email string) (bool, error)
}

type MealFinder interface {
	FindByID(ctx context.Context, id string) (*models.Meal, error)
}

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(database *mongo.Database) *MongoRepo {
	return &MongoRepo{collection: database.Collection(db.FavoritesCollection)}
}

func (r *MongoRepo) Insert(ctx context.Context, f *models.Favorite) error {
	if _, err := r.collection.InsertOne(ctx, f); err != nil {
		if db.IsDuplicateKeyError(err) {
			return apperr.Conflict("meal is already in favorites")
		}
		return apperr.Dependency("failed to add favorite", err)
	}
	return nil
}

func (r *MongoRepo) FindByID(ctx context.Context, id string) (*models.Favorite, error) {
	var f models.Favorite
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("favorite not found")
		}
		return nil, apperr.Dependency("failed to load favorite", err)
	}
	return &f, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, email string, p utils.Page) ([]models.Favorite, int64, error) {
	filter := bson.M{"userEmail": email}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to count favorites", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "addedTime", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Dependency("failed to list favorites", err)
	}
	defer cursor.Close(ctx)

	var out []models.Favorite
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, apperr.Dependency("failed to decode favorites", err)
	}
	return out, total, nil
}

func (r *MongoRepo) DeleteOwned(ctx context.Context, id, email string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userEmail": email})
	if err != nil {
		return false, apperr.Dependency("failed to delete favorite", err)
	}
	return res.DeletedCount == 1, nil
}

type Service struct {
	repo  Repo
	meals MealFinder
	now   func() time.Time
}

func NewService(repo Repo, meals MealFinder) *Service {
	return &Service{repo: repo, meals: meals, now: time.Now}
}

func (s *Service) Add(ctx context.Context, email, mealID string) (*models.Favorite, error) {
	mealID = strings.TrimSpace(mealID)
	if mealID == "" {
		return nil, apperr.Validation("mealId is required")
	}
	meal, err := s.meals.FindByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	f := &models.Favorite{
		ID:        utils.GetUUID(),
		UserEmail: utils.NormalizeEmail(email),
		MealID:    meal.ID,
		MealName:  meal.Name,
		ChefName:  meal.ChefName,
		Price:     meal.Price,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, f); err != nil {
		return nil, err
	}
	log.Printf("AddFavorite: %s saved %s", f.UserEmail, meal.ID)
	return f, nil
}

func (s *Service) List(ctx context.Context, email string, p utils.Page) ([]models.Favorite, int64, error) {
	return s.repo.ListByUser(ctx, utils.NormalizeEmail(email), p)
}

func (s *Service) Delete(ctx context.Context, email, id string) error {
	ok, err := s.repo.DeleteOwned(ctx, id, utils.NormalizeEmail(email))
	if err != nil || ok {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return apperr.Forbidden("favorite belongs to another user")
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/favorites
func (h *Handler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		MealID string `json:"mealId"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	f, err := h.svc.Add(r.Context(), utils.GetEmailFromRequest(r), req.MealID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"message": "added to favorites", "insertedId": f.ID, "favorite": f})
}

// GET /api/users/me/favorites
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := utils.ParsePage(r)
	items, total, err := h.svc.List(r.Context(), utils.GetEmailFromRequest(r), page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}

// DELETE /api/favorites/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.Delete(r.Context(), utils.GetEmailFromRequest(r), ps.ByName("id")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"message": "removed from favorites", "deletedCount": 1})
}
