package models

import (
	"time"
)

// Payment is an append-only ledger entry. The order document, not this
// record, is the source of truth for payment state.
type Payment struct {
	ID            string    `bson:"_id" json:"id"`
	Email         string    `bson:"email" json:"email"`
	OrderID       string    `bson:"orderId" json:"orderId"`
	TransactionID string    `bson:"transactionId" json:"transactionId"`
	Amount        float64   `bson:"amount" json:"amount"`
	Currency      string    `bson:"currency" json:"currency"`
	Source        string    `bson:"source" json:"source"` // client, webhook
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// IdempotencyRecord represents an idempotency key record stored in Mongo.
type IdempotencyRecord struct {
	Key         string                 `bson:"key" json:"key"`
	Method      string                 `bson:"method" json:"method"`
	Path        string                 `bson:"path" json:"path"`
	Email       string                 `bson:"email" json:"email"`
	RequestHash string                 `bson:"request_hash" json:"request_hash"`
	Response    map[string]interface{} `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time              `bson:"expires_at" json:"expires_at"`
}
