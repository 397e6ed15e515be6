// Package payments は外部決済プロセッサとの境界。
// UsecaseはProcessorインターフェースだけに依存する
package payments

import "context"

type CheckoutItem struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int64  `json:"quantity"`
}

type CheckoutSessionRequest struct {
	Items        []CheckoutItem
	CustomerName string
	Email        string
	SuccessURL   string
	CancelURL    string
	Metadata     map[string]string

	// プロセッサ側の二重作成防止キー
	IdempotencyKey string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
	CustomerName    string
	Email           string
	Items           []CheckoutItem
	AmountTotal     int64
	Paid            bool
	Metadata        map[string]string
}

type IntentRequest struct {
	Amount      int64
	Description string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
}

type WebhookEvent struct {
	Type            string
	SessionID       string
	PaymentIntentID string

	// イベント本文に載っていたセッションmetadata。
	// セッション再取得に失敗した時のitems/customerName復元用
	Metadata map[string]string
}

type Processor interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error)

	// 明細付きでセッションを引く。突合時のitems解決に使う
	GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error)

	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	CaptureIntent(ctx context.Context, id string) (Intent, error)
	CancelIntent(ctx context.Context, id string) (Intent, error)

	// 署名検証に失敗したらエラー
	VerifyWebhook(payload []byte, signature string) (WebhookEvent, error)
}
