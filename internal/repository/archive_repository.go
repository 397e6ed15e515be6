package repository

import (
	"context"

	"app/internal/domain/model"
)

type ArchiveResult struct {
	Count int
	// アーカイブ単位の参照（"YYYY-MM-DD"）
	Ref string
}

// アーカイブ単位の作成と削除はこのインターフェースだけが行う
type ArchiveRepository interface {
	// 当日分のライブ注文をまとめて日付単位に退避し、ライブ集合から消す。
	// リレーショナルモードでは1トランザクション。0件ならCount=0で何も作らない。
	// 同一日に再実行した場合は既存単位に追記する
	ArchiveToday(ctx context.Context, actor string) (ArchiveResult, error)

	List(ctx context.Context) ([]model.ArchiveSummary, error)
	Find(ctx context.Context, date string) (model.ArchiveUnit, error)
	Delete(ctx context.Context, date string) error
}
