package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type ArchiveRepoMock struct{ mock.Mock }

func (m *ArchiveRepoMock) ArchiveToday(ctx context.Context, actor string) (repo.ArchiveResult, error) {
	args := m.Called(ctx, actor)
	r, _ := args.Get(0).(repo.ArchiveResult)
	return r, args.Error(1)
}

func (m *ArchiveRepoMock) List(ctx context.Context) ([]model.ArchiveSummary, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.ArchiveSummary)
	return items, args.Error(1)
}

func (m *ArchiveRepoMock) Find(ctx context.Context, date string) (model.ArchiveUnit, error) {
	args := m.Called(ctx, date)
	u, _ := args.Get(0).(model.ArchiveUnit)
	return u, args.Error(1)
}

func (m *ArchiveRepoMock) Delete(ctx context.Context, date string) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func TestArchiveUsecase_GetArchive_MalformedDate(t *testing.T) {
	archives := new(ArchiveRepoMock)
	uc := usecase.NewArchiveUsecase(archives, zap.NewNop())

	for _, date := range []string{"2026/08/31", "20260831", "2026-8-31", "../etc/passwd", ""} {
		_, err := uc.GetArchive(context.Background(), date)
		assertHTTPStatus(t, err, 400)
	}

	// 形の崩れた日付ではストレージに触らない
	archives.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestArchiveUsecase_DeleteArchive_MalformedDate(t *testing.T) {
	archives := new(ArchiveRepoMock)
	uc := usecase.NewArchiveUsecase(archives, zap.NewNop())

	err := uc.DeleteArchive(context.Background(), "31-08-2026", "admin@cafeteria.cl")
	assertHTTPStatus(t, err, 400)
	archives.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestArchiveUsecase_ArchiveToday(t *testing.T) {
	archives := new(ArchiveRepoMock)
	uc := usecase.NewArchiveUsecase(archives, zap.NewNop())

	archives.On("ArchiveToday", mock.Anything, "admin@cafeteria.cl").
		Return(repo.ArchiveResult{Count: 7, Ref: "2026-08-31"}, nil)

	out, err := uc.ArchiveToday(context.Background(), "admin@cafeteria.cl")
	assert.NoError(t, err)
	assert.Equal(t, 7, out.Count)
	assert.Equal(t, "2026-08-31", out.Date)
	archives.AssertExpectations(t)
}

func TestArchiveUsecase_ArchiveToday_NotCleared(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	archives := new(ArchiveRepoMock)
	uc := usecase.NewArchiveUsecase(archives, zap.New(core))

	archives.On("ArchiveToday", mock.Anything, "admin@cafeteria.cl").
		Return(repo.ArchiveResult{Count: 7, Ref: "2026-08-31"}, fmt.Errorf("%w: disk full", repo.ErrArchiveNotCleared))

	_, err := uc.ArchiveToday(context.Background(), "admin@cafeteria.cl")
	assertHTTPStatus(t, err, 500)

	// 手動復旧に必要な日付と件数がエラーログに残る
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "2026-08-31", fields["date"])
		assert.EqualValues(t, 7, fields["count"])
	}
}

func TestArchiveUsecase_GetArchive_NotFound(t *testing.T) {
	archives := new(ArchiveRepoMock)
	uc := usecase.NewArchiveUsecase(archives, zap.NewNop())

	archives.On("Find", mock.Anything, "2026-08-30").
		Return(model.ArchiveUnit{}, repo.ErrNotFound)

	_, err := uc.GetArchive(context.Background(), "2026-08-30")
	assertHTTPStatus(t, err, 404)
}
