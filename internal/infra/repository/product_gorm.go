package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, storageErr(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, storageErr(err)
	}
	return p, nil
}

func (r *ProductGormRepository) List(ctx context.Context, category string) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var items []model.Product
	if err := q.Order("id asc").Find(&items).Error; err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, id int64, patch repo.ProductPatch) (model.Product, error) {
	var out model.Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Product
		err := tx.Where("id = ?", id).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return storageErr(err)
		}

		patch.Apply(&p)

		if err := tx.Save(&p).Error; err != nil {
			return storageErr(err)
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

func (r *ProductGormRepository) Delete(ctx context.Context, id int64) (model.Product, error) {
	var removed model.Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&removed).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return storageErr(err)
		}
		if err := tx.Delete(&model.Product{}, id).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return removed, nil
}
