package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
	"github.com/niu-24-19333-stack/ScamShield/internal/service"
)

type AdminHandler struct {
	ledger *service.RevocationLedger
}

func NewAdminHandler(ledger *service.RevocationLedger) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

// PurgeBlacklist godoc
// @Summary Sweep expired entries from the token blacklist
// @Description The hourly background sweep does this automatically; the
// endpoint exists for operators who want an immediate pass.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PurgeResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/admin/blacklist/purge [post]
func (h *AdminHandler) PurgeBlacklist(c *gin.Context) {
	n, err := h.ledger.PurgeExpired(c.Request.Context())
	if err != nil {
		log.Printf("[Admin] Blacklist purge failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, model.PurgeResponse{Purged: n})
}
