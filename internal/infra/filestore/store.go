// Package filestore はフラットファイル版のPersistence Adapter実装。
// ストアごとに1つのJSONドキュメントを全読み・全書きする。
// 書き込みはtempファイルへ書いてからrenameするので個々の書き込みは原子的。
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	repo "app/internal/repository"
)

const (
	ordersFile   = "orders.json"
	productsFile = "products.json"
	adminsFile   = "admin_users.json"
	archiveDir   = "archive"
)

type Store struct {
	// 全ドキュメント共通のロック。file modeはsingle writer
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, archiveDir), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", repo.ErrStorageUnavailable, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) ordersPath() string   { return filepath.Join(s.dir, ordersFile) }
func (s *Store) productsPath() string { return filepath.Join(s.dir, productsFile) }
func (s *Store) adminsPath() string   { return filepath.Join(s.dir, adminsFile) }
func (s *Store) archivePath(date string) string {
	return filepath.Join(s.dir, archiveDir, date+".json")
}

// ファイルが無い場合はok=falseで返す（初回起動は空集合）
func (s *Store) readJSON(path string, v any) (bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %v", repo.ErrStorageUnavailable, filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", repo.ErrStorageUnavailable, filepath.Base(path), err)
	}
	return true, nil
}

// temp書き込み→renameで差し替える
func (s *Store) writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", repo.ErrStorageUnavailable, filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", repo.ErrStorageUnavailable, filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", repo.ErrStorageUnavailable, filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync %s: %v", repo.ErrStorageUnavailable, filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", repo.ErrStorageUnavailable, filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %v", repo.ErrStorageUnavailable, filepath.Base(path), err)
	}
	return nil
}

// sessionはロック済みかどうかを持ち回る。
// WithinTxの中ではロックを取り直さない
type session struct {
	st     *Store
	locked bool
}

func (ss session) run(fn func() error) error {
	if !ss.locked {
		ss.st.mu.Lock()
		defer ss.st.mu.Unlock()
	}
	return fn()
}
