package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stripe/stripe-go/v78"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionAPI struct {
	created *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
}

func (f *fakeSessionAPI) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.created = params
	return f.session, f.err
}

func (f *fakeSessionAPI) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return f.session, f.err
}

type fakeIntentAPI struct {
	created *stripe.PaymentIntentParams
	intent  *stripe.PaymentIntent
	err     error
}

func (f *fakeIntentAPI) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.created = params
	return f.intent, f.err
}

func (f *fakeIntentAPI) Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error) {
	return f.intent, f.err
}

func (f *fakeIntentAPI) Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	return f.intent, f.err
}

func TestStripeProcessor_CreateCheckoutSession(t *testing.T) {
	sessions := &fakeSessionAPI{
		session: &stripe.CheckoutSession{
			ID:  "cs_test_1",
			URL: "https://checkout.stripe.test/cs_test_1",
		},
	}
	p := &StripeProcessor{sessions: sessions}

	out, err := p.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{
		Items: []CheckoutItem{
			{Name: "Almuerzo", UnitPrice: 3500, Quantity: 2},
			{Name: "Jugo", UnitPrice: 800, Quantity: 0},
		},
		CustomerName: "Ana",
		SuccessURL:   "http://localhost/success",
		CancelURL:    "http://localhost/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", out.ID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", out.URL)

	params := sessions.created
	require.NotNil(t, params)
	require.Len(t, params.LineItems, 2)

	// CLPはゼロ小数通貨なのでペソがそのままunit_amountになる
	assert.Equal(t, int64(3500), *params.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "clp", *params.LineItems[0].PriceData.Currency)
	// quantity 0以下は1に繰り上げ
	assert.Equal(t, int64(1), *params.LineItems[1].Quantity)

	// metadataに明細のフォールバックが積まれる
	require.Contains(t, params.Metadata, "items")
	var items []CheckoutItem
	require.NoError(t, json.Unmarshal([]byte(params.Metadata["items"]), &items))
	assert.Len(t, items, 2)
	assert.Equal(t, "Ana", params.Metadata["customerName"])
}

func TestStripeProcessor_GetCheckoutSession_MapsLineItems(t *testing.T) {
	sessions := &fakeSessionAPI{
		session: &stripe.CheckoutSession{
			ID:            "cs_test_2",
			PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
			CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
				Name:  "Ana",
				Email: "ana@example.cl",
			},
			LineItems: &stripe.LineItemList{
				Data: []*stripe.LineItem{
					{
						Description: "Almuerzo",
						Quantity:    2,
						Price:       &stripe.Price{UnitAmount: 3500},
					},
				},
			},
		},
	}
	p := &StripeProcessor{sessions: sessions}

	out, err := p.GetCheckoutSession(context.Background(), "cs_test_2")
	require.NoError(t, err)
	assert.True(t, out.Paid)
	assert.Equal(t, "pi_1", out.PaymentIntentID)
	assert.Equal(t, "Ana", out.CustomerName)
	require.Len(t, out.Items, 1)
	assert.Equal(t, CheckoutItem{Name: "Almuerzo", UnitPrice: 3500, Quantity: 2}, out.Items[0])
}

func TestStripeProcessor_CreateIntent_ZeroDecimal(t *testing.T) {
	intents := &fakeIntentAPI{
		intent: &stripe.PaymentIntent{
			ID:           "pi_2",
			ClientSecret: "pi_2_secret",
			Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
			Amount:       4300,
		},
	}
	p := &StripeProcessor{intents: intents}

	out, err := p.CreateIntent(context.Background(), IntentRequest{Amount: 4300, Description: "order #7"})
	require.NoError(t, err)
	assert.Equal(t, "pi_2", out.ID)
	assert.Equal(t, int64(4300), out.Amount)

	require.NotNil(t, intents.created)
	assert.Equal(t, int64(4300), *intents.created.Amount)
	assert.Equal(t, "clp", *intents.created.Currency)
}

func TestNewStripeProcessor_RequiresKey(t *testing.T) {
	_, err := NewStripeProcessor("", "whsec")
	assert.Error(t, err)
}
