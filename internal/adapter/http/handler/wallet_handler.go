package handler

import (
	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/adapter/http/middleware"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles merchant wallet provisioning and listing.
type WalletHandler struct {
	wallets ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets ports.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// ListWallets handles GET /wallets: the caller's wallets, or every
// wallet when the caller is staff.
func (h *WalletHandler) ListWallets(c *gin.Context) {
	principalID, isStaff, ok := principalFrom(c)
	if !ok {
		response.Error(c, apperror.Unauthorized("missing principal"))
		return
	}

	wallets, err := h.wallets.ListWallets(c.Request.Context(), principalID, isStaff)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, wallets)
}

// CreateWallet handles POST /wallet.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	principalID, _, ok := principalFrom(c)
	if !ok {
		response.Error(c, apperror.Unauthorized("missing principal"))
		return
	}

	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.wallets.CreateWallet(c.Request.Context(), principalID, req.CurrencyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, wallet)
}

// principalFrom reads the authenticated principal attached by the
// RequireUser/RequireMerchant/RequireStaff middlewares.
func principalFrom(c *gin.Context) (principalID int64, isStaff bool, ok bool) {
	rawID, exists := c.Get(middleware.CtxPrincipalID)
	if !exists {
		return 0, false, false
	}
	id, ok := rawID.(int64)
	if !ok {
		return 0, false, false
	}
	staff, _ := c.Get(middleware.CtxIsStaff)
	isStaff, _ = staff.(bool)
	return id, isStaff, true
}
