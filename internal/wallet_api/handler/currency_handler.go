package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/wallet_api/service"
)

// CurrencyHandler serves the currency registry. Mutations are mounted behind the admin check.
type CurrencyHandler struct {
	currencyService service.CurrencyService
	logger          *slog.Logger
}

func NewCurrencyHandler(logger *slog.Logger, currencyService service.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{
		currencyService: currencyService,
		logger:          logger,
	}
}

func (h *CurrencyHandler) List(c *gin.Context) {
	currencies, err := h.currencyService.List(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, "list_currencies", err)
		return
	}
	RespondOK(c, mapCurrenciesToResponse(currencies))
}

func (h *CurrencyHandler) Get(c *gin.Context) {
	cur, err := h.currencyService.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		RespondError(c, h.logger, "get_currency", err)
		return
	}
	RespondOK(c, mapCurrencyToResponse(cur))
}

func (h *CurrencyHandler) Add(c *gin.Context) {
	var req CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cur, err := h.currencyService.Add(c.Request.Context(), service.CurrencyValue{Code: req.Code, Value: req.Value})
	if err != nil {
		RespondError(c, h.logger, "add_currency", err)
		return
	}

	h.logger.Info("Currency registered by admin", "code", string(cur.Code))
	RespondCreated(c, mapCurrencyToResponse(cur))
}

func (h *CurrencyHandler) Update(c *gin.Context) {
	var req UpdateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cur, err := h.currencyService.Update(c.Request.Context(), service.CurrencyValue{Code: c.Param("code"), Value: req.Value})
	if err != nil {
		RespondError(c, h.logger, "update_currency", err)
		return
	}
	RespondOK(c, mapCurrencyToResponse(cur))
}

// UpdateMany applies a batch of values; one unknown code rejects the whole batch
func (h *CurrencyHandler) UpdateMany(c *gin.Context) {
	var req UpdateCurrenciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	values := make([]service.CurrencyValue, 0, len(req.Currencies))
	for _, v := range req.Currencies {
		values = append(values, service.CurrencyValue{Code: v.Code, Value: v.Value})
	}

	updated, err := h.currencyService.UpdateMany(c.Request.Context(), values)
	if err != nil {
		RespondError(c, h.logger, "update_currencies", err)
		return
	}
	RespondOK(c, mapCurrenciesToResponse(updated))
}
