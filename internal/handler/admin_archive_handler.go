package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 日次アーカイブの管理API。全ルートがJWT必須
type AdminArchiveHandler struct {
	uc *usecase.ArchiveUsecase
}

func NewAdminArchiveHandler(uc *usecase.ArchiveUsecase) *AdminArchiveHandler {
	return &AdminArchiveHandler{uc: uc}
}

func (h *AdminArchiveHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/admin/archives")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.archiveToday)
	g.GET("", h.list)
	g.GET("/:date", h.detail)
	g.DELETE("/:date", h.remove)
}

func (h *AdminArchiveHandler) archiveToday(c echo.Context) error {
	actor, ok := getAdminFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ArchiveToday(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminArchiveHandler) list(c echo.Context) error {
	out, err := h.uc.ListArchives(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminArchiveHandler) detail(c echo.Context) error {
	out, err := h.uc.GetArchive(c.Request().Context(), c.Param("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminArchiveHandler) remove(c echo.Context) error {
	actor, ok := getAdminFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteArchive(c.Request().Context(), c.Param("date"), actor); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
