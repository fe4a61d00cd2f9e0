package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ymalhaj/cashbox_ledger_app/internal/apperrors"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	portssvc "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/services"
	"github.com/ymalhaj/cashbox_ledger_app/internal/dto"
	"github.com/ymalhaj/cashbox_ledger_app/internal/middleware"
)

// ledgerHandler handles HTTP requests for movements and balances.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers movement and balance routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	movements := rg.Group("/movements")
	{
		movements.POST("", h.recordMovement)
		movements.GET("", h.listMovements)
	}

	balances := rg.Group("/balances")
	{
		balances.GET("", h.getAllBalances)
		balances.GET("/:currency", h.getBalance)
	}
}

// recordMovement godoc
// @Summary Record a cash movement
// @Description Appends a single movement to the ledger; a negative amount is stored as an OUT movement with positive magnitude
// @Tags movements
// @Accept  json
// @Produce  json
// @Param   movement body dto.RecordMovementRequest true "Movement details"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to record movement"
// @Security BearerAuth
// @Router /movements [post]
func (h *ledgerHandler) recordMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for recordMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.ledgerService.RecordMovement(c.Request.Context(), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnsupportedCurrency), errors.Is(err, apperrors.ErrInvalidAmount):
			logger.Warn("Validation error recording movement", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to record movement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record movement"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement))
}

// listMovements godoc
// @Summary List movements
// @Description Retrieves a token-paginated movement history, newest first, optionally filtered to one currency
// @Tags movements
// @Produce  json
// @Param   currency  query string false "Currency code filter (3 letters)"
// @Param   limit     query int    false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListMovementsResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list movements"
// @Security BearerAuth
// @Router /movements [get]
func (h *ledgerHandler) listMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listMovements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListMovements(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnsupportedCurrency), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to list movements", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movements"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getAllBalances godoc
// @Summary Get all balances
// @Description Computes the derived balance of every supported currency; currencies with no movements report zero
// @Tags balances
// @Produce  json
// @Success 200 {object} dto.AllBalancesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute balances"
// @Security BearerAuth
// @Router /balances [get]
func (h *ledgerHandler) getAllBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	balances, err := h.ledgerService.AllBalances(c.Request.Context())
	if err != nil {
		logger.Error("Failed to compute balances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balances"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAllBalancesResponse(balances))
}

// getBalance godoc
// @Summary Get one currency balance
// @Description Computes the derived balance of a single supported currency
// @Tags balances
// @Produce  json
// @Param   currency path string true "Currency code (3 letters)"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Unsupported currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute balance"
// @Security BearerAuth
// @Router /balances/{currency} [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currency := domain.CurrencyCode(c.Param("currency"))

	balance, err := h.ledgerService.Balance(c.Request.Context(), currency)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnsupportedCurrency):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to compute balance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{CurrencyCode: string(currency), Balance: balance})
}
