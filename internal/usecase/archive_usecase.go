package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// 日付キーはパスやファイル名になるので保存前に必ず形を見る
var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type ArchiveUsecase struct {
	archives repo.ArchiveRepository
	log      *zap.Logger
}

func NewArchiveUsecase(archives repo.ArchiveRepository, log *zap.Logger) *ArchiveUsecase {
	return &ArchiveUsecase{archives: archives, log: log}
}

type ArchiveTodayOutput struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

func (u *ArchiveUsecase) ArchiveToday(ctx context.Context, actor string) (ArchiveTodayOutput, error) {
	result, err := u.archives.ArchiveToday(ctx, actor)
	if err != nil {
		// アーカイブは書けたのにライブ側を消せなかった。
		// 放置すると同じ注文が翌日も見えるので必ず大きく残す
		if errors.Is(err, repo.ErrArchiveNotCleared) {
			u.log.Error("archive written but live orders NOT cleared, manual cleanup required",
				zap.String("date", result.Ref),
				zap.Int("count", result.Count),
				zap.String("actor", actor),
				zap.Error(err))
			return ArchiveTodayOutput{}, NewHTTPError(http.StatusInternalServerError, "archive created but live orders not cleared")
		}
		return ArchiveTodayOutput{}, mapRepoError(err)
	}
	u.log.Info("orders archived",
		zap.String("date", result.Ref),
		zap.Int("count", result.Count),
		zap.String("actor", actor))
	return ArchiveTodayOutput{Count: result.Count, Date: result.Ref}, nil
}

func (u *ArchiveUsecase) ListArchives(ctx context.Context) ([]model.ArchiveSummary, error) {
	summaries, err := u.archives.List(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if summaries == nil {
		summaries = []model.ArchiveSummary{}
	}
	return summaries, nil
}

func (u *ArchiveUsecase) GetArchive(ctx context.Context, date string) (model.ArchiveUnit, error) {
	if !dateRe.MatchString(date) {
		return model.ArchiveUnit{}, NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	unit, err := u.archives.Find(ctx, date)
	if err != nil {
		return model.ArchiveUnit{}, mapRepoError(err)
	}
	return unit, nil
}

func (u *ArchiveUsecase) DeleteArchive(ctx context.Context, date string, actor string) error {
	if !dateRe.MatchString(date) {
		return NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	if err := u.archives.Delete(ctx, date); err != nil {
		return mapRepoError(err)
	}
	u.log.Info("archive deleted", zap.String("date", date), zap.String("actor", actor))
	return nil
}
