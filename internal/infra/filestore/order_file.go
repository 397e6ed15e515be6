package filestore

import (
	"context"
	"sort"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OrderRepoFile struct {
	ss  session
	now func() time.Time
}

func NewOrderRepoFile(st *Store) *OrderRepoFile {
	return &OrderRepoFile{ss: session{st: st}, now: time.Now}
}

func (r *OrderRepoFile) load() ([]model.Order, error) {
	var orders []model.Order
	if _, err := r.ss.st.readJSON(r.ss.st.ordersPath(), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepoFile) save(orders []model.Order) error {
	return r.ss.st.writeJSON(r.ss.st.ordersPath(), orders)
}

func (r *OrderRepoFile) Create(ctx context.Context, order model.Order) (model.Order, error) {
	err := r.ss.run(func() error {
		orders, err := r.load()
		if err != nil {
			return err
		}
		if order.ExternalID != nil {
			for _, o := range orders {
				if o.ExternalID != nil && *o.ExternalID == *order.ExternalID {
					return repo.ErrConflict
				}
			}
		}
		// 採番は最大ID+1
		var maxID int64
		for _, o := range orders {
			if o.ID > maxID {
				maxID = o.ID
			}
		}
		order.ID = maxID + 1
		if order.CreatedAt.IsZero() {
			order.CreatedAt = r.now()
		}
		orders = append(orders, order)
		return r.save(orders)
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderRepoFile) FindByID(ctx context.Context, id int64) (model.Order, error) {
	var found model.Order
	err := r.ss.run(func() error {
		orders, err := r.load()
		if err != nil {
			return err
		}
		for _, o := range orders {
			if o.ID == id {
				found = o
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return found, err
}

func (r *OrderRepoFile) FindByExternalID(ctx context.Context, externalID string) (model.Order, bool, error) {
	var found model.Order
	var ok bool
	err := r.ss.run(func() error {
		orders, err := r.load()
		if err != nil {
			return err
		}
		for _, o := range orders {
			if o.ExternalID != nil && *o.ExternalID == externalID {
				found = o
				ok = true
				return nil
			}
		}
		return nil
	})
	return found, ok, err
}

func (r *OrderRepoFile) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	var result []model.Order
	err := r.ss.run(func() error {
		orders, err := r.load()
		if err != nil {
			return err
		}
		for _, o := range orders {
			if f.Status != nil && o.Status != *f.Status {
				continue
			}
			if f.ExternalID != "" && (o.ExternalID == nil || *o.ExternalID != f.ExternalID) {
				continue
			}
			result = append(result, o)
		}
		// 新しい順
		sort.Slice(result, func(i, j int) bool {
			if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
				return result[i].CreatedAt.After(result[j].CreatedAt)
			}
			return result[i].ID > result[j].ID
		})
		return nil
	})
	return result, err
}

func (r *OrderRepoFile) Update(ctx context.Context, id int64, patch repo.OrderPatch) (model.Order, error) {
	var updated model.Order
	err := r.ss.run(func() error {
		orders, err := r.load()
		if err != nil {
			return err
		}
		for i := range orders {
			if orders[i].ID == id {
				patch.Apply(&orders[i])
				updated = orders[i]
				return r.save(orders)
			}
		}
		return repo.ErrNotFound
	})
	return updated, err
}
