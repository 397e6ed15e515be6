package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ArchiveGormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewArchiveGormRepository(db *gorm.DB) *ArchiveGormRepository {
	return &ArchiveGormRepository{db: db, now: time.Now}
}

// dayBounds はnowが属する日の[開始, 翌日開始)を返す
func dayBounds(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, 1)
}

// 当日分の注文を1トランザクションでarchived_ordersへ移してordersから消す
func (r *ArchiveGormRepository) ArchiveToday(ctx context.Context, actor string) (repo.ArchiveResult, error) {
	var result repo.ArchiveResult

	// 抽出範囲もRefの日付も同じ時計から導く。
	// DBサーバ側のタイムゾーンに依存しない
	now := r.now()
	date := now.Format("2006-01-02")
	from, to := dayBounds(now)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders []model.Order
		if err := tx.Where("created_at >= ? AND created_at < ?", from, to).
			Order("id asc").
			Find(&orders).Error; err != nil {
			return storageErr(err)
		}

		if len(orders) == 0 {
			result = repo.ArchiveResult{Count: 0, Ref: date}
			return nil
		}

		ids := make([]int64, 0, len(orders))
		rows := make([]model.ArchivedOrder, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
			o.Status = model.OrderStatusArchived
			rows = append(rows, model.ArchivedOrder{
				ArchiveDate: date,
				ArchivedAt:  now,
				ArchivedBy:  actor,
				Order:       model.OrderSnapshot(o),
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			return storageErr(err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&model.Order{}).Error; err != nil {
			return storageErr(err)
		}

		result = repo.ArchiveResult{Count: len(orders), Ref: date}
		return nil
	})
	if err != nil {
		return repo.ArchiveResult{}, err
	}
	return result, nil
}

func (r *ArchiveGormRepository) List(ctx context.Context) ([]model.ArchiveSummary, error) {
	type row struct {
		ArchiveDate string
		Count       int
		ArchivedAt  time.Time
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&model.ArchivedOrder{}).
		Select("archive_date, count(*) as count, max(archived_at) as archived_at").
		Group("archive_date").
		Order("archive_date desc").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]model.ArchiveSummary, 0, len(rows))
	for _, g := range rows {
		// archived_byは日付内の最新行のものを採る
		var latest model.ArchivedOrder
		err := r.db.WithContext(ctx).
			Where("archive_date = ?", g.ArchiveDate).
			Order("archived_at desc, id desc").
			First(&latest).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storageErr(err)
		}
		out = append(out, model.ArchiveSummary{
			Date:       g.ArchiveDate,
			Count:      g.Count,
			ArchivedBy: latest.ArchivedBy,
			ArchivedAt: g.ArchivedAt,
		})
	}
	return out, nil
}

func (r *ArchiveGormRepository) Find(ctx context.Context, date string) (model.ArchiveUnit, error) {
	var rows []model.ArchivedOrder
	err := r.db.WithContext(ctx).
		Where("archive_date = ?", date).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return model.ArchiveUnit{}, storageErr(err)
	}
	if len(rows) == 0 {
		return model.ArchiveUnit{}, repo.ErrNotFound
	}

	unit := model.ArchiveUnit{Date: date}
	for _, row := range rows {
		unit.Orders = append(unit.Orders, model.Order(row.Order))
		if row.ArchivedAt.After(unit.ArchivedAt) {
			unit.ArchivedAt = row.ArchivedAt
			unit.ArchivedBy = row.ArchivedBy
		}
	}
	return unit, nil
}

func (r *ArchiveGormRepository) Delete(ctx context.Context, date string) error {
	res := r.db.WithContext(ctx).
		Where("archive_date = ?", date).
		Delete(&model.ArchivedOrder{})
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
