package usecase

import "time"

// テスト時に差し替えるための時計
type Clock interface {
	Now() time.Time
}

// UUID発行をDIにする
type IDGenerator interface {
	NewID() string
}
