package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// archiveDoc は日付別アーカイブファイルのエンベロープ
type archiveDoc struct {
	ArchivedAt time.Time     `json:"archived_at"`
	ArchivedBy string        `json:"archived_by"`
	Orders     []model.Order `json:"orders"`
}

type ArchiveRepoFile struct {
	ss  session
	now func() time.Time
}

func NewArchiveRepoFile(st *Store) *ArchiveRepoFile {
	return &ArchiveRepoFile{ss: session{st: st}, now: time.Now}
}

// ArchiveToday は当日分の注文をアーカイブファイルへ退避してからライブ側を空にする。
// アーカイブ書き込み成功後のクリア失敗はErrArchiveNotClearedで返す。
// 次回実行時は同日ファイルへ追記するので二重アーカイブにはならない。
func (r *ArchiveRepoFile) ArchiveToday(ctx context.Context, actor string) (repo.ArchiveResult, error) {
	var result repo.ArchiveResult
	err := r.ss.run(func() error {
		var orders []model.Order
		if _, err := r.ss.st.readJSON(r.ss.st.ordersPath(), &orders); err != nil {
			return err
		}

		now := r.now()
		today := now.Format("2006-01-02")

		// 営業終了時の締め処理なのでストア全体を退避する
		if len(orders) == 0 {
			result = repo.ArchiveResult{Count: 0, Ref: today}
			return nil
		}
		toArchive := make([]model.Order, 0, len(orders))
		for _, o := range orders {
			o.Status = model.OrderStatusArchived
			toArchive = append(toArchive, o)
		}

		path := r.ss.st.archivePath(today)
		var doc archiveDoc
		if _, err := r.ss.st.readJSON(path, &doc); err != nil {
			return err
		}
		doc.ArchivedAt = now
		doc.ArchivedBy = actor
		doc.Orders = append(doc.Orders, toArchive...)

		// 先にアーカイブを書き込む。ここで失敗すればライブ側は無傷
		if err := r.ss.st.writeJSON(path, doc); err != nil {
			return err
		}
		// クリアに失敗しても呼び出し側が日付と件数をログに残せるよう、
		// 結果は先に埋めておく
		result = repo.ArchiveResult{Count: len(toArchive), Ref: today}
		if err := r.ss.st.writeJSON(r.ss.st.ordersPath(), []model.Order{}); err != nil {
			return fmt.Errorf("%w: %v", repo.ErrArchiveNotCleared, err)
		}
		return nil
	})
	return result, err
}

func (r *ArchiveRepoFile) List(ctx context.Context) ([]model.ArchiveSummary, error) {
	var summaries []model.ArchiveSummary
	err := r.ss.run(func() error {
		entries, err := os.ReadDir(filepath.Join(r.ss.st.dir, archiveDir))
		if err != nil {
			return fmt.Errorf("%w: list archive dir: %v", repo.ErrStorageUnavailable, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			date := strings.TrimSuffix(name, ".json")
			var doc archiveDoc
			ok, err := r.ss.st.readJSON(r.ss.st.archivePath(date), &doc)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			summaries = append(summaries, model.ArchiveSummary{
				Date:       date,
				Count:      len(doc.Orders),
				ArchivedBy: doc.ArchivedBy,
				ArchivedAt: doc.ArchivedAt,
			})
		}
		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].Date > summaries[j].Date
		})
		return nil
	})
	return summaries, err
}

func (r *ArchiveRepoFile) Find(ctx context.Context, date string) (model.ArchiveUnit, error) {
	var unit model.ArchiveUnit
	err := r.ss.run(func() error {
		var doc archiveDoc
		ok, err := r.ss.st.readJSON(r.ss.st.archivePath(date), &doc)
		if err != nil {
			return err
		}
		if !ok {
			return repo.ErrNotFound
		}
		unit = model.ArchiveUnit{
			Date:       date,
			ArchivedAt: doc.ArchivedAt,
			ArchivedBy: doc.ArchivedBy,
			Orders:     doc.Orders,
		}
		return nil
	})
	return unit, err
}

func (r *ArchiveRepoFile) Delete(ctx context.Context, date string) error {
	return r.ss.run(func() error {
		err := os.Remove(r.ss.st.archivePath(date))
		if os.IsNotExist(err) {
			return repo.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: delete archive %s: %v", repo.ErrStorageUnavailable, date, err)
		}
		return nil
	})
}
