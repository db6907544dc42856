package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/wallet_api/middleware"
	"github.com/wallet-ledger/internal/wallet_api/service"
)

// PassbookHandler serves the projected passbook. The projection is eventually consistent
// with the ledger, so a fresh entry may take a moment to appear.
type PassbookHandler struct {
	passbookService service.PassbookService
	logger          *slog.Logger
}

func NewPassbookHandler(logger *slog.Logger, passbookService service.PassbookService) *PassbookHandler {
	return &PassbookHandler{
		passbookService: passbookService,
		logger:          logger,
	}
}

func (h *PassbookHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c)
		return
	}

	var query PassbookQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid pagination: "+err.Error())
		return
	}

	records, total, err := h.passbookService.List(c.Request.Context(), principal, query.Page, query.PageSize)
	if err != nil {
		RespondError(c, h.logger, "list_passbook", err)
		return
	}

	RespondWithPaginatedData(c, mapPassbookToResponse(records), query.Page, query.PageSize, total)
}
