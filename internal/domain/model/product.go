package model

import (
	"database/sql/driver"
	"errors"
	"time"
)

// サイズ等のバリエーション。中身は不透明なJSONのまま持つ
type Variants []byte

func (v Variants) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

func (v *Variants) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = nil
		return nil
	}
	*v = append((*v)[0:0], data...)
	return nil
}

func (v Variants) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return string(v), nil
}

func (v *Variants) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		*v = append((*v)[0:0], s...)
		return nil
	case string:
		*v = Variants(s)
		return nil
	}
	return errors.New("variants: unsupported scan source")
}

type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Price       int64     `gorm:"not null" json:"price"`
	Image       string    `gorm:"type:text" json:"image,omitempty"`
	Available   bool      `gorm:"not null;default:true" json:"available"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Variants    Variants  `gorm:"type:jsonb" json:"variants,omitempty"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
