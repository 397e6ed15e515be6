package usecase

import (
	"context"
	"fmt"
	"net/http"

	"app/internal/payments"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// カード端末側のフロー用。intentを作って注文に紐付ける
type PaymentUsecase struct {
	orders    repo.OrderRepository
	processor payments.Processor
	log       *zap.Logger
}

func NewPaymentUsecase(orders repo.OrderRepository, processor payments.Processor, log *zap.Logger) *PaymentUsecase {
	return &PaymentUsecase{orders: orders, processor: processor, log: log}
}

type CreateIntentInput struct {
	OrderID int64 `json:"orderId"`
}

type IntentOutput struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
}

func (u *PaymentUsecase) CreateIntent(ctx context.Context, in CreateIntentInput) (IntentOutput, error) {
	if u.processor == nil {
		return IntentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payments not configured")
	}
	order, err := u.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return IntentOutput{}, mapRepoError(err)
	}

	// 金額は保存済みの合計から。クライアントからは受け取らない
	intent, err := u.processor.CreateIntent(ctx, payments.IntentRequest{
		Amount:      order.Total,
		Description: fmt.Sprintf("order #%d", order.ID),
		Metadata:    map[string]string{"orderId": fmt.Sprintf("%d", order.ID)},
	})
	if err != nil {
		u.log.Error("intent create failed", zap.Int64("orderId", order.ID), zap.Error(err))
		return IntentOutput{}, NewHTTPError(http.StatusBadGateway, "payment processor error")
	}

	if _, err := u.orders.Update(ctx, order.ID, repo.OrderPatch{PaymentIntentID: &intent.ID}); err != nil {
		return IntentOutput{}, mapRepoError(err)
	}
	return intentOutput(intent), nil
}

func (u *PaymentUsecase) CaptureIntent(ctx context.Context, id string) (IntentOutput, error) {
	if u.processor == nil {
		return IntentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payments not configured")
	}
	intent, err := u.processor.CaptureIntent(ctx, id)
	if err != nil {
		u.log.Error("intent capture failed", zap.String("intentId", id), zap.Error(err))
		return IntentOutput{}, NewHTTPError(http.StatusBadGateway, "payment processor error")
	}
	return intentOutput(intent), nil
}

func (u *PaymentUsecase) CancelIntent(ctx context.Context, id string) (IntentOutput, error) {
	if u.processor == nil {
		return IntentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payments not configured")
	}
	intent, err := u.processor.CancelIntent(ctx, id)
	if err != nil {
		u.log.Error("intent cancel failed", zap.String("intentId", id), zap.Error(err))
		return IntentOutput{}, NewHTTPError(http.StatusBadGateway, "payment processor error")
	}
	return intentOutput(intent), nil
}

func intentOutput(i payments.Intent) IntentOutput {
	return IntentOutput{
		ID:           i.ID,
		ClientSecret: i.ClientSecret,
		Status:       i.Status,
		Amount:       i.Amount,
	}
}
