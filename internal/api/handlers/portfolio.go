package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/allocator/internal/allocation"
	"github.com/wonny/allocator/pkg/logger"
)

// PortfolioHandler handles portfolio endpoints
// ⭐ SSOT: 포트폴리오 API 핸들러는 이 구조체에서만
type PortfolioHandler struct {
	service *allocation.Service
	logger  *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service *allocation.Service, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  log,
	}
}

// Optimize builds an allocation for the requested stocks
// POST /api/portfolio/optimize
func (h *PortfolioHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req allocation.Request
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	portfolio, err := h.service.Optimize(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("stocks", len(req.Stocks)).Error("Portfolio optimization failed")
			respondError(w, status, "Portfolio optimization failed")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// GetPortfolio returns a stored portfolio
// GET /api/portfolio/{id}
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "portfolio id is required")
		return
	}

	portfolio, err := h.service.GetPortfolio(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("id", id).Error("Failed to get portfolio")
			respondError(w, status, "Failed to retrieve portfolio")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}
