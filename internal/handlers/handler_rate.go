package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ymalhaj/cashbox_ledger_app/internal/apperrors"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	portssvc "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/services"
	"github.com/ymalhaj/cashbox_ledger_app/internal/dto"
	"github.com/ymalhaj/cashbox_ledger_app/internal/middleware"
)

// rateHandler handles HTTP requests related to exchange rates.
type rateHandler struct {
	rateService portssvc.RateSvcFacade
}

// newRateHandler creates a new rateHandler.
func newRateHandler(rs portssvc.RateSvcFacade) *rateHandler {
	return &rateHandler{rateService: rs}
}

// registerRateRoutes registers routes related to exchange rates.
func registerRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade) {
	h := newRateHandler(rateService)

	rates := rg.Group("/rates")
	{
		rates.POST("", h.createRate)
		rates.POST("/auto-update", h.autoUpdateRates)
		rates.GET("", h.listRates)
		rates.GET("/resolve", h.resolveRate)
		rates.GET("/:from/:to", h.getRate)
		rates.GET("/:from/:to/history", h.getRateHistory)
	}
}

// createRate godoc
// @Summary Record a manual exchange rate
// @Description Records a new exchange rate for a directional pair, superseding the current one
// @Tags rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.CreateRateRequest true "Exchange rate details"
// @Success 201 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to record exchange rate"
// @Security BearerAuth
// @Router /rates [post]
func (h *rateHandler) createRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.rateService.CreateRate(c.Request.Context(), req, domain.RateSourceManual, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrUnsupportedCurrency):
			logger.Warn("Validation error creating exchange rate", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create exchange rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record exchange rate"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToRateResponse(record))
}

// autoUpdateRates godoc
// @Summary Apply a batch of auto-updated rates
// @Description Records a batch of exchange rates pushed by the scheduled updater, each with source auto_update
// @Tags rates
// @Accept  json
// @Produce  json
// @Param   rates body dto.AutoUpdateRatesRequest true "Batch of rates"
// @Success 201 {array} dto.RateResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to apply rates"
// @Security BearerAuth
// @Router /rates/auto-update [post]
func (h *rateHandler) autoUpdateRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AutoUpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for autoUpdateRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.rateService.ApplyAutoUpdate(c.Request.Context(), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrUnsupportedCurrency):
			logger.Warn("Validation error applying auto-updated rates", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to apply auto-updated rates", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply rates"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToRateResponses(records))
}

// listRates godoc
// @Summary List current exchange rates
// @Description Retrieves the current stored rate of every recorded pair
// @Tags rates
// @Produce  json
// @Success 200 {array} dto.RateResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list rates"
// @Security BearerAuth
// @Router /rates [get]
func (h *rateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rates, err := h.rateService.ListLatestRates(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list exchange rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rates"})
		return
	}

	c.JSON(http.StatusOK, dto.ToRateResponses(rates))
}

// resolveRate godoc
// @Summary Resolve an exchange rate with provenance
// @Description Resolves the effective rate for a pair following the fixed lookup order and reports how it was derived
// @Tags rates
// @Produce  json
// @Param   from query string true "From currency code (3 letters)"
// @Param   to   query string true "To currency code (3 letters)"
// @Success 200 {object} dto.RateResolutionResponse
// @Failure 400 {object} map[string]string "Unsupported currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "No rate resolvable under strict policy"
// @Failure 500 {object} map[string]string "Failed to resolve rate"
// @Security BearerAuth
// @Router /rates/resolve [get]
func (h *rateHandler) resolveRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from := domain.CurrencyCode(c.Query("from"))
	to := domain.CurrencyCode(c.Query("to"))

	resolution, err := h.rateService.Resolve(c.Request.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnsupportedCurrency):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRateUnresolvable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to resolve rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToRateResolutionResponse(resolution))
}

// getRate godoc
// @Summary Get the stored rate for an exact pair
// @Description Retrieves the current stored rate for the exact directional pair; no inverse or cross derivation
// @Tags rates
// @Produce  json
// @Param   from path string true "From currency code (3 letters)"
// @Param   to   path string true "To currency code (3 letters)"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Unsupported currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Rate not found"
// @Failure 500 {object} map[string]string "Failed to retrieve rate"
// @Security BearerAuth
// @Router /rates/{from}/{to} [get]
func (h *rateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from := domain.CurrencyCode(c.Param("from"))
	to := domain.CurrencyCode(c.Param("to"))

	rate, err := h.rateService.GetLatestRate(c.Request.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnsupportedCurrency):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		default:
			logger.Error("Failed to get exchange rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToRateResponse(rate))
}

// getRateHistory godoc
// @Summary Get rate history for a pair
// @Description Retrieves the append-only rate history for a directional pair, most recent first
// @Tags rates
// @Produce  json
// @Param   from  path  string true  "From currency code (3 letters)"
// @Param   to    path  string true  "To currency code (3 letters)"
// @Param   limit query int    false "Max entries (default 50)"
// @Success 200 {array} dto.RateResponse
// @Failure 400 {object} map[string]string "Unsupported currency"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to retrieve rate history"
// @Security BearerAuth
// @Router /rates/{from}/{to}/history [get]
func (h *rateHandler) getRateHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from := domain.CurrencyCode(c.Param("from"))
	to := domain.CurrencyCode(c.Param("to"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	history, err := h.rateService.ListRateHistory(c.Request.Context(), from, to, limit)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnsupportedCurrency):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to get exchange rate history", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rate history"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToRateResponses(history))
}
