package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

// CLPはゼロ小数通貨。金額はペソそのまま渡す
const currency = "clp"

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type StripeProcessor struct {
	sessions      stripeSessionAPI
	intents       stripeIntentAPI
	webhookSecret string
}

// テストではsessions/intentsを差し替える
func NewStripeProcessor(apiKey string, webhookSecret string) (*StripeProcessor, error) {
	if apiKey == "" {
		return nil, errors.New("stripe: api key is required")
	}
	sc := client.New(apiKey, nil)
	return &StripeProcessor{
		sessions:      sc.CheckoutSessions,
		intents:       sc.PaymentIntents,
		webhookSecret: webhookSecret,
	}, nil
}

func (p *StripeProcessor) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(qty),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(it.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
		})
	}
	params.LineItems = lineItems

	// webhook側でセッションが引けなかった時のフォールバック用に
	// 明細と名前をmetadataにも積んでおく
	params.Metadata = map[string]string{
		"customerName": req.CustomerName,
	}
	if b, err := json.Marshal(req.Items); err == nil {
		params.Metadata["items"] = string(b)
	}
	for k, v := range req.Metadata {
		params.Metadata[k] = v
	}

	session, err := p.sessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return fromStripeSession(session), nil
}

func (p *StripeProcessor) GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	session, err := p.sessions.Get(id, params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe: get checkout session: %w", err)
	}
	return fromStripeSession(session), nil
}

func fromStripeSession(s *stripe.CheckoutSession) CheckoutSession {
	out := CheckoutSession{
		ID:          s.ID,
		URL:         s.URL,
		AmountTotal: s.AmountTotal,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:    s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if s.CustomerDetails != nil {
		out.CustomerName = s.CustomerDetails.Name
		out.Email = s.CustomerDetails.Email
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			item := CheckoutItem{
				Name:     li.Description,
				Quantity: li.Quantity,
			}
			if li.Price != nil {
				item.UnitPrice = li.Price.UnitAmount
			}
			out.Items = append(out.Items, item)
		}
	}
	return out
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if len(req.Metadata) > 0 {
		params.Metadata = req.Metadata
	}

	intent, err := p.intents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return fromStripeIntent(intent), nil
}

func (p *StripeProcessor) CaptureIntent(ctx context.Context, id string) (Intent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	intent, err := p.intents.Capture(id, params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: capture payment intent: %w", err)
	}
	return fromStripeIntent(intent), nil
}

func (p *StripeProcessor) CancelIntent(ctx context.Context, id string) (Intent, error) {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	intent, err := p.intents.Cancel(id, params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: cancel payment intent: %w", err)
	}
	return fromStripeIntent(intent), nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) Intent {
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
	}
}

func (p *StripeProcessor) VerifyWebhook(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("stripe: verify webhook: %w", err)
	}

	out := WebhookEvent{Type: string(event.Type)}
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return WebhookEvent{}, fmt.Errorf("stripe: decode session event: %w", err)
		}
		out.SessionID = s.ID
		out.Metadata = s.Metadata
		if s.PaymentIntent != nil {
			out.PaymentIntentID = s.PaymentIntent.ID
		}
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return WebhookEvent{}, fmt.Errorf("stripe: decode intent event: %w", err)
		}
		out.PaymentIntentID = pi.ID
	}
	return out, nil
}
