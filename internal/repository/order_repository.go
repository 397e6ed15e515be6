package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 絞り込みは完全一致のみ
type OrderListFilter struct {
	Status     *model.OrderStatus
	ExternalID string
}

// 部分更新。nilのフィールドは触らない（shallow merge）
type OrderPatch struct {
	CustomerName    *string
	Email           *string
	Items           *model.OrderItems
	Total           *int64
	Status          *model.OrderStatus
	PaymentMethod   *model.PaymentMethod
	Note            *string
	PaymentIntentID *string
	ExternalID      *string
	PaidAt          *time.Time
}

// 与えられたフィールドだけを上書きするshallow merge。両バックエンド共通
func (p OrderPatch) Apply(o *model.Order) {
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	if p.Email != nil {
		o.Email = *p.Email
	}
	if p.Items != nil {
		o.Items = *p.Items
	}
	if p.Total != nil {
		o.Total = *p.Total
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.Note != nil {
		o.Note = *p.Note
	}
	if p.PaymentIntentID != nil {
		o.PaymentIntentID = *p.PaymentIntentID
	}
	if p.ExternalID != nil {
		o.ExternalID = p.ExternalID
	}
	if p.PaidAt != nil {
		o.PaidAt = p.PaidAt
	}
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	FindByID(ctx context.Context, id int64) (model.Order, error)

	// 突合キーでの検索。なければfound=false（エラーではない）
	FindByExternalID(ctx context.Context, externalID string) (model.Order, bool, error)

	// 新しい順で返す
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)

	Update(ctx context.Context, id int64, patch OrderPatch) (model.Order, error)
}
