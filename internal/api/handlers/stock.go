package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/allocator/internal/allocation"
	"github.com/wonny/allocator/internal/contracts"
	"github.com/wonny/allocator/pkg/logger"
)

// Industries offered to clients when building candidate lists
var Industries = []string{
	"Technology",
	"Healthcare",
	"Finance",
	"Energy",
	"Nuclear Energy",
	"Consumer Goods",
	"Real Estate",
	"Utilities",
	"Telecommunications",
	"Transportation",
	"Materials",
	"Aerospace & Defense",
}

// StockHandler handles stock validation endpoints
// ⭐ SSOT: 종목 검증 API 핸들러는 이 구조체에서만
type StockHandler struct {
	service *allocation.Service
	logger  *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service *allocation.Service, log *logger.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  log,
	}
}

// ValidateRequest represents a validation request
type ValidateRequest struct {
	Stocks   []contracts.CandidateStock `json:"stocks"`
	MaxCount int                        `json:"max_count"` // 0이면 기본값 20
}

// candidates normalizes symbols and drops blanks
// 요청이 잘못되면 사용자용 메시지를 반환
func (req ValidateRequest) candidates() ([]contracts.CandidateStock, string) {
	out := make([]contracts.CandidateStock, 0, len(req.Stocks))
	for _, s := range req.Stocks {
		s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
		if s.Symbol != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, "Please provide at least one stock"
	}
	if req.MaxCount < 0 {
		return nil, "max_count must not be negative"
	}
	return out, ""
}

// GetIndustries returns the selectable industries
// GET /api/industries
func (h *StockHandler) GetIndustries(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"industries": Industries,
	})
}

// Validate screens candidate stocks and returns the ranked valid ones
// POST /api/stocks/validate
func (h *StockHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	candidates, msg := req.candidates()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	stocks, err := h.service.Recommend(r.Context(), candidates, req.MaxCount)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Stock validation failed")
			respondError(w, status, "Stock validation failed")
			return
		}
		respondError(w, status, "No stocks passed quality validation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": stocks,
		"count":  len(stocks),
	})
}

// ListValidated returns the latest stored verdicts of valid stocks
// GET /api/stocks/validated?limit=20
func (h *StockHandler) ListValidated(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}

	stocks, err := h.service.ListValidated(r.Context(), limit)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Failed to list validated stocks")
		}
		respondError(w, status, "Failed to retrieve validated stocks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": stocks,
		"count":  len(stocks),
	})
}
