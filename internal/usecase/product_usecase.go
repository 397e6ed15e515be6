package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ProductUsecase struct {
	products repo.ProductRepository
}

func NewProductUsecase(products repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{products: products}
}

type CreateProductInput struct {
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Price       int64          `json:"price"`
	Image       string         `json:"image"`
	Available   *bool          `json:"available"`
	Description string         `json:"description"`
	Variants    model.Variants `json:"variants"`
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in CreateProductInput) (model.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name must not be empty")
	}
	if in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must not be negative")
	}

	product := model.Product{
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Image:       in.Image,
		Available:   true,
		Description: in.Description,
		Variants:    in.Variants,
	}
	if in.Available != nil {
		product.Available = *in.Available
	}

	created, err := u.products.Create(ctx, product)
	if err != nil {
		return model.Product{}, mapRepoError(err)
	}
	return created, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	product, err := u.products.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, mapRepoError(err)
	}
	return product, nil
}

func (u *ProductUsecase) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	products, err := u.products.List(ctx, category)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

type UpdateProductInput struct {
	Name        *string         `json:"name"`
	Category    *string         `json:"category"`
	Price       *int64          `json:"price"`
	Image       *string         `json:"image"`
	Available   *bool           `json:"available"`
	Description *string         `json:"description"`
	Variants    *model.Variants `json:"variants"`
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, id int64, in UpdateProductInput) (model.Product, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name must not be empty")
	}
	if in.Price != nil && *in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must not be negative")
	}

	patch := repo.ProductPatch{
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Image:       in.Image,
		Available:   in.Available,
		Description: in.Description,
		Variants:    in.Variants,
	}
	updated, err := u.products.Update(ctx, id, patch)
	if err != nil {
		return model.Product{}, mapRepoError(err)
	}
	return updated, nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, id int64) (model.Product, error) {
	removed, err := u.products.Delete(ctx, id)
	if err != nil {
		return model.Product{}, mapRepoError(err)
	}
	return removed, nil
}
