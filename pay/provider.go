package pay

import "context"

const EventIntentSucceeded = "payment_intent.succeeded"

// Intent is the provider-side view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

func (i *Intent) Succeeded() bool {
	return i.Status == "succeeded"
}

type IntentRequest struct {
	Amount         int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// Event is a provider callback whose signature has been verified.
type Event struct {
	ID     string
	Type   string
	Intent *Intent
}

// Provider moves the money. Implementations wrap the payment processor SDK.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
