package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ymalhaj/cashbox_ledger_app/internal/apperrors"
	portssvc "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/services"
	"github.com/ymalhaj/cashbox_ledger_app/internal/dto"
	"github.com/ymalhaj/cashbox_ledger_app/internal/middleware"
)

// conversionHandler handles HTTP requests for currency conversions.
type conversionHandler struct {
	conversionService portssvc.ConversionSvcFacade
}

// newConversionHandler creates a new conversionHandler.
func newConversionHandler(cs portssvc.ConversionSvcFacade) *conversionHandler {
	return &conversionHandler{conversionService: cs}
}

// registerConversionRoutes registers conversion routes.
func registerConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade) {
	h := newConversionHandler(conversionService)

	conversions := rg.Group("/conversions")
	{
		conversions.POST("", h.convert)
		conversions.GET("", h.listConversions)
		conversions.GET("/preview", h.previewConversion)
		conversions.GET("/summary", h.conversionSummary)
	}
}

// conversionErrStatus maps a conversion service error to an HTTP status.
// Precondition failures are client errors; an unresolvable rate under the
// strict policy and a failed funds check are semantic rejections.
func conversionErrStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnsupportedCurrency),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrSameCurrency):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrRateUnresolvable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// previewConversion godoc
// @Summary Preview a conversion
// @Description Computes the conversion read-only with the same rate resolution and arithmetic as execution; nothing is written
// @Tags conversions
// @Produce  json
// @Param   from   query string true "Source currency code (3 letters)"
// @Param   to     query string true "Target currency code (3 letters)"
// @Param   amount query string true "Amount in the source currency"
// @Success 200 {object} dto.ConversionPreviewResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "No rate resolvable under strict policy"
// @Failure 500 {object} map[string]string "Failed to preview conversion"
// @Security BearerAuth
// @Router /conversions/preview [get]
func (h *conversionHandler) previewConversion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.PreviewConversionParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for previewConversion", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	preview, err := h.conversionService.Preview(c.Request.Context(), params)
	if err != nil {
		status := conversionErrStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to preview conversion", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to preview conversion"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ToConversionPreviewResponse(preview))
}

// convert godoc
// @Summary Execute a conversion
// @Description Converts between cashbox currencies: one OUT movement in the source, one IN movement in the target and an audit record, written atomically
// @Tags conversions
// @Accept  json
// @Produce  json
// @Param   conversion body dto.ConvertRequest true "Conversion details"
// @Success 201 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Insufficient balance or no rate resolvable"
// @Failure 500 {object} map[string]string "Conversion failed"
// @Security BearerAuth
// @Router /conversions [post]
func (h *conversionHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.conversionService.Convert(c.Request.Context(), req, actorID)
	if err != nil {
		status := conversionErrStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Conversion failed", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Conversion failed"})
			return
		}
		logger.Warn("Conversion rejected", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.ToConversionResponse(record))
}

// listConversions godoc
// @Summary List conversion history
// @Description Retrieves executed conversions, most recent first
// @Tags conversions
// @Produce  json
// @Param   limit query int false "Max entries (default 50)"
// @Success 200 {array} dto.ConversionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list conversions"
// @Security BearerAuth
// @Router /conversions [get]
func (h *conversionHandler) listConversions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.conversionService.History(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to list conversions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToConversionResponses(records))
}

// conversionSummary godoc
// @Summary Summarize conversions per pair
// @Description Aggregates conversions per directional pair within the last windowDays: count, totals of both legs and the average applied rate
// @Tags conversions
// @Produce  json
// @Param   windowDays query int false "Window in days (default 30)"
// @Success 200 {object} dto.ConversionSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to summarize conversions"
// @Security BearerAuth
// @Router /conversions/summary [get]
func (h *conversionHandler) conversionSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	windowDays, _ := strconv.Atoi(c.DefaultQuery("windowDays", "30"))
	if windowDays <= 0 {
		windowDays = 30
	}

	pairs, err := h.conversionService.Summary(c.Request.Context(), windowDays)
	if err != nil {
		logger.Error("Failed to summarize conversions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize conversions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToConversionSummaryResponse(windowDays, pairs))
}
