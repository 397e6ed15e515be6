package filestore

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestOrderRepoFile_Create_AssignsMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepoFile(newTestStore(t))

	first, err := r.Create(ctx, model.Order{CustomerName: "Ana", Items: model.OrderItems{{Name: "Almuerzo", UnitPrice: 3500, Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := r.Create(ctx, model.Order{CustomerName: "Luis", Items: model.OrderItems{{Name: "Jugo", UnitPrice: 800, Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	// 途中の注文が消えても採番は後退しない前提はない（max+1なので再利用はありうる）
	found, err := r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", found.CustomerName)
}

func TestOrderRepoFile_Create_DuplicateExternalID(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepoFile(newTestStore(t))

	ext := "cs_test_123"
	_, err := r.Create(ctx, model.Order{CustomerName: "Ana", ExternalID: &ext})
	require.NoError(t, err)

	_, err = r.Create(ctx, model.Order{CustomerName: "Luis", ExternalID: &ext})
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func TestOrderRepoFile_FindByExternalID(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepoFile(newTestStore(t))

	ext := "cs_test_abc"
	_, err := r.Create(ctx, model.Order{CustomerName: "Ana", ExternalID: &ext})
	require.NoError(t, err)

	found, ok, err := r.FindByExternalID(ctx, ext)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ana", found.CustomerName)

	// 無ければfound=falseでエラーにはならない
	_, ok, err = r.FindByExternalID(ctx, "cs_missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderRepoFile_List_NewestFirstAndFilter(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepoFile(newTestStore(t))

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)}
	i := 0
	r.now = func() time.Time { t := times[i]; i++; return t }

	_, err := r.Create(ctx, model.Order{CustomerName: "A", Status: model.OrderStatusPending})
	require.NoError(t, err)
	_, err = r.Create(ctx, model.Order{CustomerName: "B", Status: model.OrderStatusPaid})
	require.NoError(t, err)
	_, err = r.Create(ctx, model.Order{CustomerName: "C", Status: model.OrderStatusPending})
	require.NoError(t, err)

	all, err := r.List(ctx, repo.OrderListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "C", all[0].CustomerName)
	assert.Equal(t, "A", all[2].CustomerName)

	paid := model.OrderStatusPaid
	filtered, err := r.List(ctx, repo.OrderListFilter{Status: &paid})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "B", filtered[0].CustomerName)
}

func TestOrderRepoFile_Update_ShallowMerge(t *testing.T) {
	ctx := context.Background()
	r := NewOrderRepoFile(newTestStore(t))

	created, err := r.Create(ctx, model.Order{
		CustomerName: "Ana",
		Note:         "sin sal",
		Status:       model.OrderStatusPendingPayment,
	})
	require.NoError(t, err)

	paid := model.OrderStatusPaid
	updated, err := r.Update(ctx, created.ID, repo.OrderPatch{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, updated.Status)
	// 触っていないフィールドは残る
	assert.Equal(t, "Ana", updated.CustomerName)
	assert.Equal(t, "sin sal", updated.Note)

	_, err = r.Update(ctx, 999, repo.OrderPatch{Status: &paid})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
