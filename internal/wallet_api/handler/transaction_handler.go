package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	engine "github.com/wallet-ledger/internal/ledger_engine/service"
	"github.com/wallet-ledger/internal/wallet_api/middleware"
	"github.com/wallet-ledger/internal/wallet_api/service"
)

// TransactionHandler handles transfers and transfer history
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create executes a transfer synchronously and returns the committed transaction
func (h *TransactionHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c)
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	amount, err := req.Money.toMoney()
	if err != nil {
		RespondError(c, h.logger, "transfer", err)
		return
	}

	result, err := h.transactionService.Transfer(c.Request.Context(), principal, &engine.TransferRequest{
		SenderWalletID:   uuid.MustParse(req.SenderWalletID),
		ReceiverWalletID: uuid.MustParse(req.ReceiverWalletID),
		ReceiverUsername: req.ReceiverUsername,
		Amount:           amount,
		CorrelationID:    middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondError(c, h.logger, "transfer", err)
		return
	}

	RespondCreated(c, TransferResponse{
		Transaction:  mapTransactionToResponse(result.Transaction),
		SenderWallet: mapWalletToResponse(result.SenderWallet),
	})
}

// List returns the principal's transfers, or only the one at ?timestamp= (unix ms)
func (h *TransactionHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c)
		return
	}

	if raw, present := c.GetQuery("timestamp"); present {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondBadRequest(c, "timestamp must be unix milliseconds")
			return
		}
		tx, err := h.transactionService.GetByTimestamp(c.Request.Context(), principal, ts)
		if err != nil {
			RespondError(c, h.logger, "get_transaction", err)
			return
		}
		RespondOK(c, mapTransactionToResponse(tx))
		return
	}

	txs, err := h.transactionService.List(c.Request.Context(), principal)
	if err != nil {
		RespondError(c, h.logger, "list_transactions", err)
		return
	}
	RespondOK(c, mapTransactionsToResponse(txs))
}
