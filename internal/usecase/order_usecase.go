package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/notify"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	orders   repo.OrderRepository
	notifier notify.Notifier
	clock    Clock
	log      *zap.Logger
}

func NewOrderUsecase(orders repo.OrderRepository, notifier notify.Notifier, clock Clock, log *zap.Logger) *OrderUsecase {
	return &OrderUsecase{orders: orders, notifier: notifier, clock: clock, log: log}
}

type OrderItemInput struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int64  `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName    string           `json:"customerName"`
	Email           string           `json:"email"`
	Items           []OrderItemInput `json:"items"`
	PaymentMethod   string           `json:"paymentMethod"`
	Note            string           `json:"note"`
	ExternalID      string           `json:"externalId"`
	PaymentIntentID string           `json:"paymentIntentId"`
}

// 保存前に全部チェックする。不正入力はストレージに触らない
func validateItems(in []OrderItemInput) (model.OrderItems, error) {
	if len(in) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "items must not be empty")
	}
	items := make(model.OrderItems, 0, len(in))
	for _, it := range in {
		if strings.TrimSpace(it.Name) == "" {
			return nil, NewHTTPError(http.StatusBadRequest, "item name must not be empty")
		}
		if it.UnitPrice < 0 {
			return nil, NewHTTPError(http.StatusBadRequest, "item unitPrice must not be negative")
		}
		items = append(items, model.OrderItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return items, nil
}

func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (model.Order, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "customerName must not be empty")
	}
	items, err := validateItems(in.Items)
	if err != nil {
		return model.Order{}, err
	}
	// 支払い方法は未指定でもよい（その場合はpending開始）
	var method model.PaymentMethod
	if in.PaymentMethod != "" {
		method, err = model.ParsePaymentMethod(in.PaymentMethod)
		if err != nil {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid paymentMethod")
		}
	}

	order := model.Order{
		CustomerName:    in.CustomerName,
		Email:           in.Email,
		Items:           items,
		// 合計はサーバ側で再計算。クライアント提示額は信用しない
		Total:           items.Total(),
		Status:          model.InitialStatus(method, in.PaymentIntentID),
		PaymentMethod:   method,
		Note:            in.Note,
		PaymentIntentID: in.PaymentIntentID,
		CreatedAt:       u.clock.Now(),
	}
	if in.ExternalID != "" {
		order.ExternalID = &in.ExternalID
	}

	created, err := u.orders.Create(ctx, order)
	if err != nil {
		return model.Order{}, mapRepoError(err)
	}
	u.log.Info("order created",
		zap.Int64("id", created.ID),
		zap.String("status", string(created.Status)),
		zap.Int64("total", created.Total))
	return created, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	order, err := u.orders.FindByID(ctx, id)
	if err != nil {
		return model.Order{}, mapRepoError(err)
	}
	return order, nil
}

func (u *OrderUsecase) ListOrders(ctx context.Context, status, externalID string) ([]model.Order, error) {
	var filter repo.OrderListFilter
	if status != "" {
		st, err := model.ParseOrderStatus(status)
		if err != nil {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		filter.Status = &st
	}
	filter.ExternalID = externalID
	orders, err := u.orders.List(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// NotifyReady は受け取り案内メールを明示的に送り直す
func (u *OrderUsecase) NotifyReady(ctx context.Context, id int64) error {
	if u.notifier == nil {
		return NewHTTPError(http.StatusServiceUnavailable, "notifications not configured")
	}
	order, err := u.orders.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if order.Email == "" {
		return NewHTTPError(http.StatusBadRequest, "order has no email")
	}
	if err := u.notifier.OrderReady(ctx, order); err != nil {
		u.log.Warn("ready notification failed", zap.Int64("id", id), zap.Error(err))
		return NewHTTPError(http.StatusBadGateway, "notification failed")
	}
	return nil
}

type UpdateOrderInput struct {
	CustomerName    *string           `json:"customerName"`
	Email           *string           `json:"email"`
	Items           *[]OrderItemInput `json:"items"`
	Status          *string           `json:"status"`
	PaymentMethod   *string           `json:"paymentMethod"`
	Note            *string           `json:"note"`
	PaymentIntentID *string           `json:"paymentIntentId"`
}

// UpdateOrder は部分更新。adminOverride=trueなら遷移表を無視できるが
// その場合はwarnログを残す
func (u *OrderUsecase) UpdateOrder(ctx context.Context, id int64, in UpdateOrderInput, adminOverride bool) (model.Order, error) {
	current, err := u.orders.FindByID(ctx, id)
	if err != nil {
		return model.Order{}, mapRepoError(err)
	}

	var patch repo.OrderPatch

	if in.Status != nil {
		next, err := model.ParseOrderStatus(*in.Status)
		if err != nil {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		if !model.CanTransition(current.Status, next) {
			if !adminOverride {
				return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status transition")
			}
			u.log.Warn("status transition forced by admin",
				zap.Int64("id", id),
				zap.String("from", string(current.Status)),
				zap.String("to", string(next)))
		}
		patch.Status = &next
		if next == model.OrderStatusPaid && current.PaidAt == nil {
			now := u.clock.Now()
			patch.PaidAt = &now
		}
	}
	if in.Items != nil {
		items, err := validateItems(*in.Items)
		if err != nil {
			return model.Order{}, err
		}
		total := items.Total()
		patch.Items = &items
		patch.Total = &total
	}
	if in.PaymentMethod != nil {
		method, err := model.ParsePaymentMethod(*in.PaymentMethod)
		if err != nil {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid paymentMethod")
		}
		patch.PaymentMethod = &method
	}
	if in.CustomerName != nil {
		if strings.TrimSpace(*in.CustomerName) == "" {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "customerName must not be empty")
		}
		patch.CustomerName = in.CustomerName
	}
	patch.Email = in.Email
	patch.Note = in.Note
	patch.PaymentIntentID = in.PaymentIntentID

	updated, err := u.orders.Update(ctx, id, patch)
	if err != nil {
		return model.Order{}, mapRepoError(err)
	}

	// 受け取り可能になったら顧客へ知らせる。失敗しても更新は成立している
	if u.notifier != nil &&
		updated.Status == model.OrderStatusReadyForPickup &&
		current.Status != model.OrderStatusReadyForPickup {
		if err := u.notifier.OrderReady(ctx, updated); err != nil {
			u.log.Warn("ready notification failed", zap.Int64("id", id), zap.Error(err))
		}
	}
	return updated, nil
}
