package handler

import (
	"strconv"
	"time"

	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/money"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// CurrencyHandler serves the currency catalog and the conversion graph's
// rate table.
type CurrencyHandler struct {
	currencies ports.CurrencyRepository
	rates      ports.ConversionRateRepository
	graph      ports.ConversionGraphService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencies ports.CurrencyRepository, rates ports.ConversionRateRepository, graph ports.ConversionGraphService) *CurrencyHandler {
	return &CurrencyHandler{currencies: currencies, rates: rates, graph: graph}
}

// ListCurrencies handles GET /currencies.
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.currencies.List(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.Internal(err))
		return
	}

	out := make([]dto.CurrencyResponse, 0, len(currencies))
	for _, cur := range currencies {
		out = append(out, dto.CurrencyResponse{ID: cur.ID, Code: cur.Code})
	}
	response.OK(c, dto.CurrenciesResponse{Currencies: out})
}

// Rates handles GET /rates/{from_id}: the cheapest rate from the given
// currency to every other reachable currency.
func (h *CurrencyHandler) Rates(c *gin.Context) {
	fromID, err := strconv.ParseInt(c.Param("from_id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("from_id must be an integer"))
		return
	}

	rates, err := h.graph.RatesFrom(c.Request.Context(), fromID, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make(map[string]money.Money, len(rates))
	for currencyID, rate := range rates {
		out[strconv.FormatInt(currencyID, 10)] = rate
	}
	response.OK(c, dto.RatesResponse{Rates: out})
}

// SetRate handles POST /rates (staff only): administrative upsert of a
// conversion graph edge (spec.md §4.1). The cache is invalidated wholesale
// on every mutation so subsequent Rate/RatesFrom calls see the new edge.
func (h *CurrencyHandler) SetRate(c *gin.Context) {
	var req dto.SetConversionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	now := time.Now()
	rate := &domain.ConversionRate{
		FromCurrencyID: req.FromCurrencyID,
		ToCurrencyID:   req.ToCurrencyID,
		Rate:           req.Rate,
		AllowReversed:  req.AllowReversed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.rates.Upsert(c.Request.Context(), rate); err != nil {
		response.Error(c, apperror.Internal(err))
		return
	}
	h.graph.Invalidate()

	response.OK(c, dto.ConversionRateResponse{
		ID:             rate.ID,
		FromCurrencyID: rate.FromCurrencyID,
		ToCurrencyID:   rate.ToCurrencyID,
		Rate:           rate.Rate,
		AllowReversed:  rate.AllowReversed,
	})
}
