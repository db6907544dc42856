package handler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/domain/user"
	engine "github.com/wallet-ledger/internal/ledger_engine/service"
	"github.com/wallet-ledger/internal/wallet_api/middleware"
	"github.com/wallet-ledger/internal/wallet_api/service"
)

// WalletHandler handles HTTP requests for wallet operations
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

func (h *WalletHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c)
		return
	}

	w, err := h.walletService.Create(c.Request.Context(), principal)
	if err != nil {
		RespondError(c, h.logger, "create_wallet", err)
		return
	}

	RespondCreated(c, mapWalletToResponse(w))
}

func (h *WalletHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c)
		return
	}

	wallets, err := h.walletService.List(c.Request.Context(), principal)
	if err != nil {
		RespondError(c, h.logger, "list_wallets", err)
		return
	}

	RespondOK(c, mapWalletsToResponse(wallets))
}

func (h *WalletHandler) Deposit(c *gin.Context) {
	h.changeBalance(c, "deposit", h.walletService.Deposit)
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	h.changeBalance(c, "withdraw", h.walletService.Withdraw)
}

type balanceOperation func(ctx context.Context, principal user.Principal, walletID uuid.UUID, amount money.Money, correlationID string) (*engine.BalanceResult, error)

func (h *WalletHandler) changeBalance(c *gin.Context, operation string, apply balanceOperation) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c)
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid wallet ID")
		return
	}

	var req BalanceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	amount, err := req.Money.toMoney()
	if err != nil {
		RespondError(c, h.logger, operation, err)
		return
	}

	result, err := apply(c.Request.Context(), principal, walletID, amount, middleware.GetCorrelationID(c))
	if err != nil {
		RespondError(c, h.logger, operation, err)
		return
	}

	RespondOK(c, BalanceChangeResponse{
		Wallet: mapWalletToResponse(result.Wallet),
		Entry:  mapEntryToResponse(result.Entry),
	})
}

// Entries returns the wallet's ledger, or only the entry at ?timestamp= (unix ms)
func (h *WalletHandler) Entries(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c)
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid wallet ID")
		return
	}

	if raw, present := c.GetQuery("timestamp"); present {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondBadRequest(c, "timestamp must be unix milliseconds")
			return
		}
		entry, err := h.walletService.FetchEntry(c.Request.Context(), principal, walletID, ts)
		if err != nil {
			RespondError(c, h.logger, "fetch_entry", err)
			return
		}
		RespondOK(c, mapEntryToResponse(entry))
		return
	}

	entries, err := h.walletService.FetchLedger(c.Request.Context(), principal, walletID)
	if err != nil {
		RespondError(c, h.logger, "fetch_ledger", err)
		return
	}
	RespondOK(c, mapEntriesToResponse(entries))
}
