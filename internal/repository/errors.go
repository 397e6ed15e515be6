package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// バックエンド到達不能・I/O失敗。呼び出し側はリトライ可能
	ErrStorageUnavailable = errors.New("storage unavailable")

	// external_idの一意制約違反。再検索してupdateで解決する
	ErrConflict = errors.New("conflict")

	// ファイルモード限定：アーカイブ書き込み後のライブ側クリアに失敗。
	// アーカイブにもライブにも同じ注文が残るので手動での突合が必要
	ErrArchiveNotCleared = errors.New("archive written but live orders not cleared")
)
