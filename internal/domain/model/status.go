package model

import "fmt"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"

	// 現金/junaebで保証なし：受け取り時に支払う
	OrderStatusPendingPayment OrderStatus = "pending_payment"

	// checkout session作成時の仮注文。webhookの確定待ち
	OrderStatusAwaitingExternal OrderStatus = "awaiting_external_payment"

	// PaymentIntentで保証済み、受け取り待ち
	OrderStatusGuaranteed OrderStatus = "guaranteed_awaiting_pickup"

	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"

	// 終端。Archival Engineだけが付与する
	OrderStatusArchived OrderStatus = "archived"
)

// 未知のステータス文字列は境界で弾く
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPendingPayment, OrderStatusAwaitingExternal,
		OrderStatusGuaranteed, OrderStatusPaid, OrderStatusReadyForPickup,
		OrderStatusArchived:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status: %q", s)
}

// 作成時の初期ステータスを支払い方法と保証の有無から決める
func InitialStatus(method PaymentMethod, paymentIntentID string) OrderStatus {
	switch method {
	case PaymentMethodCash, PaymentMethodJunaeb:
		if paymentIntentID != "" {
			return OrderStatusGuaranteed
		}
		return OrderStatusPendingPayment
	}
	// カードまたは未指定
	return OrderStatusPending
}

// 遷移表。archivedからはどこへも戻れない。
// 現金/junaebはカウンターで精算するので、paidを経ずに受け渡しできる
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:          {OrderStatusPaid, OrderStatusArchived},
	OrderStatusPendingPayment:   {OrderStatusPaid, OrderStatusReadyForPickup, OrderStatusArchived},
	OrderStatusAwaitingExternal: {OrderStatusPaid, OrderStatusArchived},
	OrderStatusGuaranteed:       {OrderStatusPaid, OrderStatusReadyForPickup, OrderStatusArchived},
	OrderStatusPaid:             {OrderStatusReadyForPickup, OrderStatusArchived},
	OrderStatusReadyForPickup:   {OrderStatusArchived},
	OrderStatusArchived:         {},
}

func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
