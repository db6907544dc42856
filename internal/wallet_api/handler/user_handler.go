package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/domain/money"
	"github.com/wallet-ledger/internal/wallet_api/middleware"
	"github.com/wallet-ledger/internal/wallet_api/service"
)

// UserHandler handles registration and removal of users
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

func NewUserHandler(logger *slog.Logger, userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Register creates a user together with a first wallet in the requested currency
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, w, err := h.userService.Register(c.Request.Context(), req.Username, req.Name, money.Currency(req.Currency))
	if err != nil {
		RespondError(c, h.logger, "register_user", err)
		return
	}

	RespondCreated(c, RegisterUserResponse{
		User:   mapUserToResponse(u),
		Wallet: mapWalletToResponse(w),
	})
}

// Delete removes the authenticated user and their wallets
func (h *UserHandler) Delete(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), principal); err != nil {
		RespondError(c, h.logger, "delete_user", err)
		return
	}

	RespondNoContent(c)
}
