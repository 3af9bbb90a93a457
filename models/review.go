package models

import "time"

type Review struct {
	ID          string    `json:"id" bson:"_id"`
	MealID      string    `json:"mealId" bson:"mealId"`
	Rating      int       `json:"rating" bson:"rating"`
	Comment     string    `json:"comment" bson:"comment"`
	AuthorEmail string    `json:"reviewerEmail" bson:"reviewerEmail"`
	AuthorName  string    `json:"reviewerName,omitempty" bson:"reviewerName,omitempty"`
	AuthorImage string    `json:"reviewerImage,omitempty" bson:"reviewerImage,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ReviewWithMeal is a review joined with the meal it rates.
type ReviewWithMeal struct {
	Review    `bson:",inline"`
	MealName  string `json:"mealName" bson:"mealName"`
	MealImage string `json:"mealImage,omitempty" bson:"mealImage,omitempty"`
}

// Favorite is unique per (UserEmail, MealID).
type Favorite struct {
	ID        string    `json:"id" bson:"_id"`
	UserEmail string    `json:"userEmail" bson:"userEmail"`
	MealID    string    `json:"mealId" bson:"mealId"`
	MealName  string    `json:"mealName,omitempty" bson:"mealName,omitempty"`
	ChefName  string    `json:"chefName,omitempty" bson:"chefName,omitempty"`
	Price     float64   `json:"price" bson:"price"`
	CreatedAt time.Time `json:"addedTime" bson:"addedTime"`
}
