package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderCancelled OrderStatus = "cancelled"
	OrderDelivered OrderStatus = "delivered"
)

// Terminal reports whether no further transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == OrderCancelled || s == OrderDelivered
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderCancelled, OrderDelivered:
		return true
	}
	return false
}

// PaymentStatus is a separate axis from OrderStatus.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Order struct {
	ID            string        `json:"id" bson:"_id"`
	FoodID        string        `json:"foodId" bson:"foodId"`
	MealName      string        `json:"mealName" bson:"mealName"`
	ChefID        string        `json:"chefId" bson:"chefId"`
	ChefEmail     string        `json:"chefEmail" bson:"chefEmail"`
	UserEmail     string        `json:"userEmail" bson:"userEmail"`
	UserName      string        `json:"userName,omitempty" bson:"userName,omitempty"`
	UserAddress   string        `json:"userAddress,omitempty" bson:"userAddress,omitempty"`
	Price         float64       `json:"price" bson:"price"`
	Quantity      int           `json:"quantity" bson:"quantity"`
	TotalPrice    float64       `json:"totalPrice" bson:"totalPrice"`
	OrderStatus   OrderStatus   `json:"orderStatus" bson:"orderStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	TransactionID string        `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	OrderTime     time.Time     `json:"orderTime" bson:"orderTime"`
	AcceptedAt    *time.Time    `json:"acceptedAt,omitempty" bson:"acceptedAt,omitempty"`
	CancelledAt   *time.Time    `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	DeliveredAt   *time.Time    `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
}

func (o *Order) Paid() bool {
	return o.PaymentStatus == PaymentPaid
}
