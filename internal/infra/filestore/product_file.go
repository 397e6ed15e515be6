package filestore

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ProductRepoFile struct {
	ss  session
	now func() time.Time
}

func NewProductRepoFile(st *Store) *ProductRepoFile {
	return &ProductRepoFile{ss: session{st: st}, now: time.Now}
}

func (r *ProductRepoFile) load() ([]model.Product, error) {
	var products []model.Product
	if _, err := r.ss.st.readJSON(r.ss.st.productsPath(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepoFile) save(products []model.Product) error {
	return r.ss.st.writeJSON(r.ss.st.productsPath(), products)
}

func (r *ProductRepoFile) Create(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.ss.run(func() error {
		products, err := r.load()
		if err != nil {
			return err
		}
		var maxID int64
		for _, existing := range products {
			if existing.ID > maxID {
				maxID = existing.ID
			}
		}
		p.ID = maxID + 1
		now := r.now()
		p.CreatedAt = now
		p.UpdatedAt = now
		products = append(products, p)
		return r.save(products)
	})
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductRepoFile) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var found model.Product
	err := r.ss.run(func() error {
		products, err := r.load()
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.ID == id {
				found = p
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return found, err
}

func (r *ProductRepoFile) List(ctx context.Context, category string) ([]model.Product, error) {
	var result []model.Product
	err := r.ss.run(func() error {
		products, err := r.load()
		if err != nil {
			return err
		}
		for _, p := range products {
			if category != "" && p.Category != category {
				continue
			}
			result = append(result, p)
		}
		return nil
	})
	return result, err
}

func (r *ProductRepoFile) Update(ctx context.Context, id int64, patch repo.ProductPatch) (model.Product, error) {
	var updated model.Product
	err := r.ss.run(func() error {
		products, err := r.load()
		if err != nil {
			return err
		}
		for i := range products {
			if products[i].ID == id {
				patch.Apply(&products[i])
				products[i].UpdatedAt = r.now()
				updated = products[i]
				return r.save(products)
			}
		}
		return repo.ErrNotFound
	})
	return updated, err
}

func (r *ProductRepoFile) Delete(ctx context.Context, id int64) (model.Product, error) {
	var removed model.Product
	err := r.ss.run(func() error {
		products, err := r.load()
		if err != nil {
			return err
		}
		for i := range products {
			if products[i].ID == id {
				removed = products[i]
				products = append(products[:i], products[i+1:]...)
				return r.save(products)
			}
		}
		return repo.ErrNotFound
	})
	return removed, err
}
