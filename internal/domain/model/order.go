package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodJunaeb PaymentMethod = "junaeb"
	PaymentMethodCard   PaymentMethod = "card"
)

// 未知の支払い方法は境界で弾く
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentMethodCash, PaymentMethodJunaeb, PaymentMethodCard:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method: %q", s)
}

// 注文明細（並び順は表示順）
type OrderItem struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int64  `json:"quantity"`
}

type OrderItems []OrderItem

// 合計は常にサーバー側で再計算する。quantityが0以下なら1として扱う
func (items OrderItems) Total() int64 {
	var total int64
	for _, it := range items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += it.UnitPrice * qty
	}
	return total
}

// jsonbカラム用
func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (items *OrderItems) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*items = OrderItems{}
		return nil
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	}
	return errors.New("order items: unsupported scan source")
}

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 決済プロセッサのcheckout session ID。突合キーなので一意
	ExternalID *string `gorm:"type:varchar(255);uniqueIndex" json:"externalId,omitempty"`

	CustomerName    string        `gorm:"type:varchar(255);not null" json:"customerName"`
	Email           string        `gorm:"type:varchar(255)" json:"email,omitempty"`
	Items           OrderItems    `gorm:"type:jsonb;not null" json:"items"`
	Total           int64         `gorm:"not null" json:"total"`
	Status          OrderStatus   `gorm:"type:varchar(32);not null;index" json:"status"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(16)" json:"paymentMethod,omitempty"`
	Note            string        `gorm:"type:text" json:"note,omitempty"`
	PaymentIntentID string        `gorm:"type:varchar(255)" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;autoCreateTime" json:"createdAt"`
	PaidAt          *time.Time    `json:"paidAt,omitempty"`
}
