package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// アーカイブ行に入れる注文スナップショット（jsonb）
type OrderSnapshot Order

func (s OrderSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *OrderSnapshot) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return errors.New("order snapshot: unsupported scan source")
}

// リレーショナルモードのアーカイブ行。日付単位でまとまる
type ArchivedOrder struct {
	ID          int64         `gorm:"primaryKey;autoIncrement"`
	ArchiveDate string        `gorm:"type:varchar(10);not null;index"`
	ArchivedAt  time.Time     `gorm:"not null"`
	ArchivedBy  string        `gorm:"type:varchar(255);not null"`
	Order       OrderSnapshot `gorm:"type:jsonb;not null"`
}

// 日単位のスナップショット。作成後は全体削除以外読み取り専用
type ArchiveUnit struct {
	Date       string    `json:"date"`
	ArchivedAt time.Time `json:"archived_at"`
	ArchivedBy string    `json:"archived_by"`
	Orders     []Order   `json:"orders"`
}

type ArchiveSummary struct {
	Date       string    `json:"date"`
	Count      int       `json:"count"`
	ArchivedBy string    `json:"archived_by"`
	ArchivedAt time.Time `json:"archived_at"`
}
