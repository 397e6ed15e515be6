package filestore

import (
	"context"
	"time"

	repo "app/internal/repository"
)

type txReposFile struct {
	orders *OrderRepoFile
}

func (t *txReposFile) Orders() repo.OrderRepository { return t.orders }

// TxManagerFile はストア全体のロックで直列化する。
// ロールバックは無い。fnがエラーを返した時点で書き込み済みの
// ドキュメントはそのまま残る
type TxManagerFile struct {
	st *Store
}

func NewTxManagerFile(st *Store) *TxManagerFile {
	return &TxManagerFile{st: st}
}

func (m *TxManagerFile) WithinTx(ctx context.Context, fn func(repos repo.TxRepos) error) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	locked := session{st: m.st, locked: true}
	return fn(&txReposFile{
		orders: &OrderRepoFile{ss: locked, now: time.Now},
	})
}
