package handler

import (
	"io"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/checkout-session", h.createSession)
	e.POST("/webhook", h.webhook)
}

func (h *CheckoutHandler) createSession(c echo.Context) error {
	var req usecase.CreateCheckoutInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateCheckoutSession(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// 決済プロセッサからの通知。署名検証があるので生のbodyのまま渡す
func (h *CheckoutHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	signature := c.Request().Header.Get("Stripe-Signature")

	if err := h.uc.CompleteFromWebhook(c.Request().Context(), payload, signature); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
