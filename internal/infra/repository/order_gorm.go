package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		// external_idの一意制約違反はErrConflictで返す。
		// 呼び出し側（reconcile）が再検索してupdateに切り替える
		if isUniqueViolation(err) {
			return model.Order{}, repo.ErrConflict
		}
		return model.Order{}, storageErr(err)
	}
	return order, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, id int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, storageErr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByExternalID(ctx context.Context, externalID string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, storageErr(err)
	}
	return o, true, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ExternalID != "" {
		q = q.Where("external_id = ?", f.ExternalID)
	}

	var items []model.Order
	if err := q.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func (r *OrderGormRepository) Update(ctx context.Context, id int64, patch repo.OrderPatch) (model.Order, error) {
	var out model.Order

	// read-then-writeなので1トランザクションで行う
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o model.Order
		err := tx.Where("id = ?", id).First(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return storageErr(err)
		}

		patch.Apply(&o)

		if err := tx.Save(&o).Error; err != nil {
			if isUniqueViolation(err) {
				return repo.ErrConflict
			}
			return storageErr(err)
		}
		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
