// Package notify は注文イベントのメール通知。
// 通知失敗は業務処理を止めない（呼び出し側でログだけ残す）
package notify

import (
	"context"

	"app/internal/domain/model"
)

type Notifier interface {
	OrderPaid(ctx context.Context, order model.Order) error
	OrderReady(ctx context.Context, order model.Order) error
}

// SMTP未設定時のダミー
type NopNotifier struct{}

func (NopNotifier) OrderPaid(ctx context.Context, order model.Order) error  { return nil }
func (NopNotifier) OrderReady(ctx context.Context, order model.Order) error { return nil }
