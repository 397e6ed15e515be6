package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/notify"
	"app/internal/payments"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// CheckoutUsecase は外部決済セッションの作成と、決済側の事実を
// ローカル注文へ突合する処理を持つ
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	processor payments.Processor
	notifier  notify.Notifier
	clock     Clock
	idGen     IDGenerator
	log       *zap.Logger

	// 決済完了ページのリダイレクト先
	baseURL string
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	processor payments.Processor,
	notifier notify.Notifier,
	clock Clock,
	idGen IDGenerator,
	log *zap.Logger,
	baseURL string,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		processor: processor,
		notifier:  notifier,
		clock:     clock,
		idGen:     idGen,
		log:       log,
		baseURL:   baseURL,
	}
}

type CreateCheckoutInput struct {
	CustomerName string           `json:"customerName"`
	Email        string           `json:"email"`
	Items        []OrderItemInput `json:"items"`
	Note         string           `json:"note"`
}

type CheckoutOutput struct {
	SessionID string      `json:"sessionId"`
	URL       string      `json:"url"`
	Order     model.Order `json:"order"`
}

// CreateCheckoutSession は決済セッションを作ってから仮注文を残す。
// 仮注文のexternalIdがセッションIDで、webhookが来たらここに突合される
func (u *CheckoutUsecase) CreateCheckoutSession(ctx context.Context, in CreateCheckoutInput) (CheckoutOutput, error) {
	if u.processor == nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payments not configured")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "customerName must not be empty")
	}
	items, err := validateItems(in.Items)
	if err != nil {
		return CheckoutOutput{}, err
	}

	checkoutItems := make([]payments.CheckoutItem, 0, len(items))
	for _, it := range items {
		checkoutItems = append(checkoutItems, payments.CheckoutItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	session, err := u.processor.CreateCheckoutSession(ctx, payments.CheckoutSessionRequest{
		Items:          checkoutItems,
		CustomerName:   in.CustomerName,
		Email:          in.Email,
		SuccessURL:     u.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      u.baseURL + "/checkout/cancel",
		IdempotencyKey: u.idGen.NewID(),
	})
	if err != nil {
		u.log.Error("checkout session create failed", zap.Error(err))
		return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "payment processor error")
	}

	// 仮注文が作れなくてもセッションは返す。
	// webhook側のReconcileが挿入で拾うので取りこぼしにはならない
	order, err := u.CreateProvisional(ctx, ProvisionalOrderInput{
		ExternalID:      session.ID,
		CustomerName:    in.CustomerName,
		Email:           in.Email,
		Items:           in.Items,
		Note:            in.Note,
		PaymentIntentID: session.PaymentIntentID,
	})
	if err != nil {
		u.log.Error("provisional order create failed",
			zap.String("sessionId", session.ID), zap.Error(err))
	}

	return CheckoutOutput{SessionID: session.ID, URL: session.URL, Order: order}, nil
}

type ProvisionalOrderInput struct {
	ExternalID      string           `json:"externalId"`
	CustomerName    string           `json:"customerName"`
	Email           string           `json:"email"`
	Items           []OrderItemInput `json:"items"`
	Note            string           `json:"note"`
	PaymentIntentID string           `json:"paymentIntentId"`
}

// CreateProvisional は決済待ちの仮注文を作る。
// 同じexternalIdが既にあればそれを返す（再送しても増えない）
func (u *CheckoutUsecase) CreateProvisional(ctx context.Context, in ProvisionalOrderInput) (model.Order, error) {
	if strings.TrimSpace(in.ExternalID) == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "externalId must not be empty")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "customerName must not be empty")
	}
	items, err := validateItems(in.Items)
	if err != nil {
		return model.Order{}, err
	}

	var result model.Order
	attempt := func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByExternalID(ctx, in.ExternalID)
		if err != nil {
			return err
		}
		if found {
			result = existing
			return nil
		}

		externalID := in.ExternalID
		order := model.Order{
			ExternalID:      &externalID,
			CustomerName:    in.CustomerName,
			Email:           in.Email,
			Items:           items,
			Total:           items.Total(),
			Status:          model.OrderStatusAwaitingExternal,
			PaymentMethod:   model.PaymentMethodCard,
			Note:            in.Note,
			PaymentIntentID: in.PaymentIntentID,
			CreatedAt:       u.clock.Now(),
		}
		created, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		result = created
		return nil
	}

	err = u.tx.WithinTx(ctx, attempt)
	// 同時に同じセッションが来た場合。一意制約違反はトランザクションごと
	// 失敗するので、新しいトランザクションで引き直す
	if errors.Is(err, repo.ErrConflict) {
		err = u.tx.WithinTx(ctx, attempt)
	}
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return model.Order{}, err
		}
		return model.Order{}, mapRepoError(err)
	}
	return result, nil
}

type ReconcileInput struct {
	ExternalID      string           `json:"externalId"`
	CustomerName    string           `json:"customerName"`
	Email           string           `json:"email"`
	Items           []OrderItemInput `json:"items"`
	PaymentIntentID string           `json:"paymentIntentId"`
}

// Reconcile は決済側で支払い済みになった事実をローカル注文に反映する。
// 既存の仮注文があれば更新、なければ支払い済みの注文を新規作成。
// 何度呼んでも注文は1件のままで結果は同じ
func (u *CheckoutUsecase) Reconcile(ctx context.Context, in ReconcileInput) (model.Order, error) {
	if strings.TrimSpace(in.ExternalID) == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "externalId must not be empty")
	}

	paidAt := u.clock.Now()
	var result model.Order
	attempt := func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByExternalID(ctx, in.ExternalID)
		if err != nil {
			return err
		}
		if found {
			result, err = u.markPaid(ctx, r, existing, in, paidAt)
			return err
		}

		// 仮注文が無いままwebhookが先に来た（または注文が消えていた）。
		// 決済済みの事実が正なので注文ごと作る
		externalID := in.ExternalID
		order := model.Order{
			ExternalID:      &externalID,
			CustomerName:    in.CustomerName,
			Email:           in.Email,
			Items:           reconcileItems(in.Items),
			Status:          model.OrderStatusPaid,
			PaymentMethod:   model.PaymentMethodCard,
			PaymentIntentID: in.PaymentIntentID,
			CreatedAt:       paidAt,
			PaidAt:          &paidAt,
		}
		order.Total = order.Items.Total()

		created, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		result = created
		return nil
	}

	err := u.tx.WithinTx(ctx, attempt)
	// 並走する突合に先を越された。新しいトランザクションで引き直して
	// 更新パスに乗せる（通知の取りこぼしはこれで起きない）
	if errors.Is(err, repo.ErrConflict) {
		err = u.tx.WithinTx(ctx, attempt)
	}
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return model.Order{}, err
		}
		return model.Order{}, mapRepoError(err)
	}

	u.log.Info("order reconciled",
		zap.Int64("id", result.ID),
		zap.String("externalId", in.ExternalID),
		zap.String("status", string(result.Status)))

	if u.notifier != nil {
		if err := u.notifier.OrderPaid(ctx, result); err != nil {
			u.log.Warn("paid notification failed", zap.Int64("id", result.ID), zap.Error(err))
		}
	}
	return result, nil
}

// 既存注文を支払い済みへ寄せる。入力側に明細があれば差し替えて合計再計算
func (u *CheckoutUsecase) markPaid(ctx context.Context, r repo.TxRepos, existing model.Order, in ReconcileInput, paidAt time.Time) (model.Order, error) {
	var patch repo.OrderPatch

	if existing.Status != model.OrderStatusPaid {
		status := model.OrderStatusPaid
		patch.Status = &status
	}
	if existing.PaidAt == nil {
		patch.PaidAt = &paidAt
	}
	if len(in.Items) > 0 {
		items := reconcileItems(in.Items)
		total := items.Total()
		patch.Items = &items
		patch.Total = &total
	}
	if in.CustomerName != "" && existing.CustomerName == "" {
		patch.CustomerName = &in.CustomerName
	}
	if in.Email != "" && existing.Email == "" {
		patch.Email = &in.Email
	}
	if in.PaymentIntentID != "" && existing.PaymentIntentID == "" {
		patch.PaymentIntentID = &in.PaymentIntentID
	}

	return r.Orders().Update(ctx, existing.ID, patch)
}

func reconcileItems(in []OrderItemInput) model.OrderItems {
	items := make(model.OrderItems, 0, len(in))
	for _, it := range in {
		items = append(items, model.OrderItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return items
}

// CompleteFromWebhook はプロセッサからの通知を検証して突合する。
// 明細はセッション→metadata→空の順で解決する
func (u *CheckoutUsecase) CompleteFromWebhook(ctx context.Context, payload []byte, signature string) error {
	if u.processor == nil {
		return NewHTTPError(http.StatusServiceUnavailable, "payments not configured")
	}
	event, err := u.processor.VerifyWebhook(payload, signature)
	if err != nil {
		u.log.Warn("webhook verification failed", zap.Error(err))
		return NewHTTPError(http.StatusBadRequest, "invalid webhook signature")
	}
	if event.SessionID == "" {
		// 対象外のイベントは成功で受ける（再送されても意味がない）
		return nil
	}

	in := ReconcileInput{
		ExternalID:      event.SessionID,
		PaymentIntentID: event.PaymentIntentID,
	}

	session, err := u.processor.GetCheckoutSession(ctx, event.SessionID)
	if err != nil {
		// セッションが引けなくてもイベント本文のmetadataから明細を復元できる
		u.log.Warn("session lookup failed, falling back to event metadata",
			zap.String("sessionId", event.SessionID), zap.Error(err))
		applyMetadataFallback(&in, event.Metadata)
	} else {
		in.CustomerName = session.CustomerName
		in.Email = session.Email
		in.PaymentIntentID = session.PaymentIntentID
		for _, it := range session.Items {
			in.Items = append(in.Items, OrderItemInput{
				Name:      it.Name,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
			})
		}
		if len(in.Items) == 0 {
			applyMetadataFallback(&in, session.Metadata)
		}
	}

	_, err = u.Reconcile(ctx, in)
	return err
}

// セッション作成時にmetadataへ積んでおいた明細と名前を取り出す
func applyMetadataFallback(in *ReconcileInput, md map[string]string) {
	if md == nil {
		return
	}
	if raw, ok := md["items"]; ok && len(in.Items) == 0 {
		var items []OrderItemInput
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			in.Items = items
		}
	}
	if in.CustomerName == "" {
		in.CustomerName = md["customerName"]
	}
}
