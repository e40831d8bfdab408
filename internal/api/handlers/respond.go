package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/allocator/internal/allocation"
	"github.com/wonny/allocator/internal/marketdata"
	"github.com/wonny/allocator/internal/optimizer"
)

// maxBodyBytes limits request bodies
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON reads a bounded JSON body into dst
// 알 수 없는 필드는 무시 (검증 응답의 종목을 그대로 optimize에 전달 가능)
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// statusFor maps service errors to HTTP status codes
// ⭐ SSOT: 에러 → 상태 코드 매핑은 여기서만
func statusFor(err error) int {
	switch {
	case errors.Is(err, allocation.ErrTooFewStocks),
		errors.Is(err, allocation.ErrInvalidAmount),
		errors.Is(err, allocation.ErrInsufficientHistory),
		errors.Is(err, marketdata.ErrUnsupportedPeriod),
		errors.Is(err, optimizer.ErrUnknownMethod):
		return http.StatusBadRequest
	case errors.Is(err, allocation.ErrNoValidCandidates):
		return http.StatusUnprocessableEntity
	case errors.Is(err, allocation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, allocation.ErrStoreDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
