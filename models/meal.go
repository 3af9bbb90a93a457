package models

import "time"

// Meal is a listing owned by exactly one chef.
type Meal struct {
	ID             string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Image          string    `json:"image,omitempty" bson:"image,omitempty"`
	Price          float64   `json:"price" bson:"price"`
	Ingredients    []string  `json:"ingredients,omitempty" bson:"ingredients,omitempty"`
	DeliveryTime   string    `json:"estimatedDeliveryTime,omitempty" bson:"estimatedDeliveryTime,omitempty"`
	ChefExperience string    `json:"chefExperience,omitempty" bson:"chefExperience,omitempty"`
	ChefID         string    `json:"chefId" bson:"chefId"`
	ChefEmail      string    `json:"chefEmail" bson:"chefEmail"`
	ChefName       string    `json:"chefName,omitempty" bson:"chefName,omitempty"`
	Rating         float64   `json:"rating" bson:"rating"`
	ReviewCount    int64     `json:"reviewCount" bson:"reviewCount"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}
