package repository

import (
	"context"

	"app/internal/domain/model"
)

type AdminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (model.AdminUser, error)

	// シード用。同じemailなら名前とハッシュを上書きする
	Upsert(ctx context.Context, admin model.AdminUser) (model.AdminUser, error)
}
