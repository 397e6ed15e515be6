package server

import (
	"app/internal/logger"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// New は共通ミドルウェア込みのechoインスタンスを返す。
// ルート登録は各ハンドラのRegisterRoutesが行う
func New(log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(logger.RequestLogger(log))

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
