// Package stripe adapts the Stripe API to pay.Provider.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"

	"homedish/pay"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type Provider struct {
	api           *client.API
	webhookSecret string
}

func NewProvider(secretKey, webhookSecret string) *Provider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Provider{api: api, webhookSecret: webhookSecret}
}

func (p *Provider) CreateIntent(ctx context.Context, req pay.IntentRequest) (*pay.Intent, error) {
	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(req.Amount),
		Currency: stripego.String(req.Currency),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return toIntent(pi), nil
}

func (p *Provider) GetIntent(ctx context.Context, id string) (*pay.Intent, error) {
	params := &stripego.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get payment intent %s: %w", id, err)
	}
	return toIntent(pi), nil
}

// VerifyEvent checks the Stripe-Signature header against the webhook secret.
func (p *Provider) VerifyEvent(payload []byte, signature string) (*pay.Event, error) {
	if p.webhookSecret == "" {
		return nil, fmt.Errorf("stripe: webhook secret not configured")
	}
	ev, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe: verify webhook: %w", err)
	}

	out := &pay.Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil && len(ev.Data.Raw) > 0 && out.Type == pay.EventIntentSucceeded {
		var pi stripego.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("stripe: decode payment intent: %w", err)
		}
		out.Intent = toIntent(&pi)
	}
	return out, nil
}

func toIntent(pi *stripego.PaymentIntent) *pay.Intent {
	return &pay.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
