// Package db はリレーショナルバックエンドへの接続を持つ。
// DSNの組み立てはconfig側の責務で、ここは開くだけ
package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db: open postgres: %w", err)
	}
	return gormDB, nil
}
