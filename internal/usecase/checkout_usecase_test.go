package usecase_test

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	"app/internal/infra/filestore"
	"app/internal/payments"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticIDGen struct{}

func (staticIDGen) NewID() string { return "idem-key-1" }

// Processorのスタブ。webhook検証とセッション取得だけ差し替える
type stubProcessor struct {
	event      payments.WebhookEvent
	sessionErr error
	session    payments.CheckoutSession
}

func (s *stubProcessor) CreateCheckoutSession(ctx context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
	return s.session, nil
}

func (s *stubProcessor) GetCheckoutSession(ctx context.Context, id string) (payments.CheckoutSession, error) {
	if s.sessionErr != nil {
		return payments.CheckoutSession{}, s.sessionErr
	}
	return s.session, nil
}

func (s *stubProcessor) CreateIntent(ctx context.Context, req payments.IntentRequest) (payments.Intent, error) {
	return payments.Intent{}, nil
}

func (s *stubProcessor) CaptureIntent(ctx context.Context, id string) (payments.Intent, error) {
	return payments.Intent{}, nil
}

func (s *stubProcessor) CancelIntent(ctx context.Context, id string) (payments.Intent, error) {
	return payments.Intent{}, nil
}

func (s *stubProcessor) VerifyWebhook(payload []byte, signature string) (payments.WebhookEvent, error) {
	return s.event, nil
}

// ファイルバックエンドを実物で使い、突合の収束だけを見る
func newCheckoutFixture(t *testing.T) (*usecase.CheckoutUsecase, repo.OrderRepository) {
	return newCheckoutFixtureWithProcessor(t, nil)
}

func newCheckoutFixtureWithProcessor(t *testing.T, p payments.Processor) (*usecase.CheckoutUsecase, repo.OrderRepository) {
	t.Helper()
	st, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	orders := filestore.NewOrderRepoFile(st)
	tx := filestore.NewTxManagerFile(st)

	uc := usecase.NewCheckoutUsecase(tx, p, nil, fixedClock{t: testNow}, staticIDGen{}, zap.NewNop(), "http://localhost:3000")
	return uc, orders
}

func TestCheckoutUsecase_CreateProvisional(t *testing.T) {
	ctx := context.Background()
	uc, orders := newCheckoutFixture(t)

	order, err := uc.CreateProvisional(ctx, usecase.ProvisionalOrderInput{
		ExternalID:   "cs_test_1",
		CustomerName: "Ana",
		Items:        []usecase.OrderItemInput{{Name: "Almuerzo", UnitPrice: 3500, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusAwaitingExternal, order.Status)
	assert.Equal(t, int64(7000), order.Total)
	require.NotNil(t, order.ExternalID)
	assert.Equal(t, "cs_test_1", *order.ExternalID)

	// 同じセッションの再送では注文は増えない
	again, err := uc.CreateProvisional(ctx, usecase.ProvisionalOrderInput{
		ExternalID:   "cs_test_1",
		CustomerName: "Ana",
		Items:        []usecase.OrderItemInput{{Name: "Almuerzo", UnitPrice: 3500, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, again.ID)

	all, err := orders.List(ctx, repo.OrderListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCheckoutUsecase_Reconcile_UpdatesProvisional(t *testing.T) {
	ctx := context.Background()
	uc, orders := newCheckoutFixture(t)

	provisional, err := uc.CreateProvisional(ctx, usecase.ProvisionalOrderInput{
		ExternalID:   "cs_test_2",
		CustomerName: "Ana",
		Items:        []usecase.OrderItemInput{{Name: "Almuerzo", UnitPrice: 3500, Quantity: 1}},
	})
	require.NoError(t, err)

	reconciled, err := uc.Reconcile(ctx, usecase.ReconcileInput{
		ExternalID:      "cs_test_2",
		PaymentIntentID: "pi_abc",
	})
	require.NoError(t, err)
	assert.Equal(t, provisional.ID, reconciled.ID)
	assert.Equal(t, model.OrderStatusPaid, reconciled.Status)
	require.NotNil(t, reconciled.PaidAt)
	assert.True(t, reconciled.PaidAt.Equal(testNow))
	// 確定明細が来なければ既存の明細と合計を保つ
	assert.Equal(t, int64(3500), reconciled.Total)

	all, err := orders.List(ctx, repo.OrderListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCheckoutUsecase_Reconcile_ConfirmedItemsWin(t *testing.T) {
	ctx := context.Background()
	uc, _ := newCheckoutFixture(t)

	_, err := uc.CreateProvisional(ctx, usecase.ProvisionalOrderInput{
		ExternalID:   "cs_test_3",
		CustomerName: "Ana",
		Items:        []usecase.OrderItemInput{{Name: "Almuerzo", UnitPrice: 3500, Quantity: 1}},
	})
	require.NoError(t, err)

	reconciled, err := uc.Reconcile(ctx, usecase.ReconcileInput{
		ExternalID: "cs_test_3",
		Items: []usecase.OrderItemInput{
			{Name: "Almuerzo", UnitPrice: 3500, Quantity: 2},
			{Name: "Jugo", UnitPrice: 800, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7800), reconciled.Total)
	assert.Len(t, reconciled.Items, 2)
}

func TestCheckoutUsecase_Reconcile_InsertsWhenMissing(t *testing.T) {
	ctx := context.Background()
	uc, orders := newCheckoutFixture(t)

	// 仮注文なしでwebhookが先に来たケース
	reconciled, err := uc.Reconcile(ctx, usecase.ReconcileInput{
		ExternalID:   "cs_test_4",
		CustomerName: "Luis",
		Email:        "luis@example.cl",
		Items:        []usecase.OrderItemInput{{Name: "Cafe", UnitPrice: 1200, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, reconciled.Status)
	assert.Equal(t, int64(1200), reconciled.Total)
	require.NotNil(t, reconciled.PaidAt)

	found, ok, err := orders.FindByExternalID(ctx, "cs_test_4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, reconciled.ID, found.ID)
}

func TestCheckoutUsecase_Reconcile_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc, orders := newCheckoutFixture(t)

	first, err := uc.Reconcile(ctx, usecase.ReconcileInput{
		ExternalID: "cs_test_5",
		Items:      []usecase.OrderItemInput{{Name: "Cafe", UnitPrice: 1200, Quantity: 1}},
	})
	require.NoError(t, err)

	// at-least-once配送：同じ通知が何度来ても結果は同じ
	second, err := uc.Reconcile(ctx, usecase.ReconcileInput{
		ExternalID: "cs_test_5",
		Items:      []usecase.OrderItemInput{{Name: "Cafe", UnitPrice: 1200, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, model.OrderStatusPaid, second.Status)

	all, err := orders.List(ctx, repo.OrderListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCheckoutUsecase_Reconcile_EmptyExternalID(t *testing.T) {
	ctx := context.Background()
	uc, _ := newCheckoutFixture(t)

	_, err := uc.Reconcile(ctx, usecase.ReconcileInput{ExternalID: "  "})
	assertHTTPStatus(t, err, 400)
}

// セッション再取得が失敗しても、イベント本文のmetadataから明細を復元して突合する
func TestCheckoutUsecase_CompleteFromWebhook_EventMetadataFallback(t *testing.T) {
	ctx := context.Background()
	proc := &stubProcessor{
		event: payments.WebhookEvent{
			Type:      "checkout.session.completed",
			SessionID: "cs_test_6",
			Metadata: map[string]string{
				"items":        `[{"name":"Café","unitPrice":1500,"quantity":2}]`,
				"customerName": "Ana",
			},
		},
		sessionErr: errors.New("stripe: get checkout session: unavailable"),
	}
	uc, orders := newCheckoutFixtureWithProcessor(t, proc)

	require.NoError(t, uc.CompleteFromWebhook(ctx, []byte(`{}`), "sig"))

	found, ok, err := orders.FindByExternalID(ctx, "cs_test_6")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.OrderStatusPaid, found.Status)
	assert.Equal(t, "Ana", found.CustomerName)
	assert.Equal(t, int64(3000), found.Total)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Café", found.Items[0].Name)
}

func TestCheckoutUsecase_CreateCheckoutSession_NoProcessor(t *testing.T) {
	ctx := context.Background()
	uc, _ := newCheckoutFixture(t)

	_, err := uc.CreateCheckoutSession(ctx, usecase.CreateCheckoutInput{
		CustomerName: "Ana",
		Items:        []usecase.OrderItemInput{{Name: "Almuerzo", UnitPrice: 3500, Quantity: 1}},
	})
	assertHTTPStatus(t, err, 503)
}
