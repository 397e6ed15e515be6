package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc             *usecase.PaymentUsecase
	publishableKey string
}

func NewPaymentHandler(uc *usecase.PaymentUsecase, publishableKey string) *PaymentHandler {
	return &PaymentHandler{uc: uc, publishableKey: publishableKey}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/config", h.publicConfig)
	e.POST("/api/payment-intents", h.createIntent)
	e.POST("/api/payment-intents/:id/capture", h.captureIntent)
	e.POST("/api/payment-intents/:id/cancel", h.cancelIntent)
}

// フロントが決済SDKを初期化するための公開キー
func (h *PaymentHandler) publicConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"publishableKey": h.publishableKey,
	})
}

func (h *PaymentHandler) createIntent(c echo.Context) error {
	var req usecase.CreateIntentInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateIntent(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PaymentHandler) captureIntent(c echo.Context) error {
	out, err := h.uc.CaptureIntent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) cancelIntent(c echo.Context) error {
	out, err := h.uc.CancelIntent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
