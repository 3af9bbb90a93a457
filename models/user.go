package models

import "time"

// Role is the single role an account holds at a time.
type Role string

const (
	RoleUser         Role = "user"
	RoleChefPending  Role = "chef-pending"
	RoleChef         Role = "chef"
	RoleAdminPending Role = "admin-pending"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleChefPending, RoleChef, RoleAdminPending, RoleAdmin:
		return true
	}
	return false
}

// Status is independent of Role. Fraud blocks chef capabilities.
type Status string

const (
	StatusActive Status = "active"
	StatusFraud  Status = "fraud"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusFraud
}

// Account is a registered customer, chef or administrator, keyed by email.
type Account struct {
	ID      string `json:"id" bson:"_id"`
	UID     string `json:"uid" bson:"uid"`
	Email   string `json:"email" bson:"email"`
	Name    string `json:"name" bson:"name"`
	Image   string `json:"image,omitempty" bson:"image,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	Role    Role   `json:"role" bson:"role"`
	Status  Status `json:"status" bson:"status"`

	ChefID           string     `json:"chefId,omitempty" bson:"chefId,omitempty"`
	ChefRequestedAt  *time.Time `json:"chefRequestedAt,omitempty" bson:"chefRequestedAt,omitempty"`
	ChefApprovedAt   *time.Time `json:"chefApprovedAt,omitempty" bson:"chefApprovedAt,omitempty"`
	AdminRequestedAt *time.Time `json:"adminRequestedAt,omitempty" bson:"adminRequestedAt,omitempty"`
	AdminApprovedAt  *time.Time `json:"adminApprovedAt,omitempty" bson:"adminApprovedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (a *Account) IsFraud() bool {
	return a.Status == StatusFraud
}
