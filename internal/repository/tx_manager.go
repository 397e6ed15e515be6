package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// ファイルモードではストア全体のロック（single writer）が相当する
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
