package repository

import (
	"context"

	"app/internal/domain/model"
)

type ProductPatch struct {
	Name        *string
	Category    *string
	Price       *int64
	Image       *string
	Available   *bool
	Description *string
	Variants    *model.Variants
}

func (p ProductPatch) Apply(target *model.Product) {
	if p.Name != nil {
		target.Name = *p.Name
	}
	if p.Category != nil {
		target.Category = *p.Category
	}
	if p.Price != nil {
		target.Price = *p.Price
	}
	if p.Image != nil {
		target.Image = *p.Image
	}
	if p.Available != nil {
		target.Available = *p.Available
	}
	if p.Description != nil {
		target.Description = *p.Description
	}
	if p.Variants != nil {
		target.Variants = *p.Variants
	}
}

type ProductRepository interface {
	Create(ctx context.Context, p model.Product) (model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// categoryが空なら全件
	List(ctx context.Context, category string) ([]model.Product, error)

	Update(ctx context.Context, id int64, patch ProductPatch) (model.Product, error)
	Delete(ctx context.Context, id int64) (model.Product, error)
}
