package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/allocator/internal/contracts"
)

// Stream event types
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
)

// Ping/Pong settings
const (
	streamPingInterval = 30 * time.Second
	streamPongWait     = 60 * time.Second
	streamWriteWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// REST 엔드포인트와 동일하게 Origin 제한 없음
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamEvent is one message of the validation stream
type StreamEvent struct {
	Type   string                     `json:"type"`
	Done   int                        `json:"done,omitempty"`
	Total  int                        `json:"total,omitempty"`
	Stock  *contracts.ValidatedStock  `json:"stock,omitempty"`
	Stocks []contracts.ValidatedStock `json:"stocks,omitempty"`
	Count  int                        `json:"count,omitempty"`
	Status int                        `json:"status,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// ValidateStream screens candidates and pushes each verdict as it is computed
// GET /api/stocks/validate/stream
// 첫 메시지로 ValidateRequest를 받고 progress… → result 또는 error 후 정상 종료
func (h *StockHandler) ValidateStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade가 이미 HTTP 에러 응답을 작성함
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(streamPongWait))

	var req ValidateRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.finish(conn, StreamEvent{Type: EventError, Status: http.StatusBadRequest, Error: "Invalid request message: " + err.Error()})
		return
	}
	candidates, msg := req.candidates()
	if msg != "" {
		h.finish(conn, StreamEvent{Type: EventError, Status: http.StatusBadRequest, Error: msg})
		return
	}

	// hijack 이후 요청 ctx는 연결 종료를 알지 못함 → 읽기 루프가 취소 담당
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readUntilClosed(conn, cancel)
	go pingLoop(ctx, conn)

	log := h.logger.WithField("candidates", len(candidates))
	log.Info("Validation stream started")

	_, selected, err := h.service.ScreenEach(ctx, candidates, req.MaxCount, func(done, total int, stock contracts.ValidatedStock) {
		event := StreamEvent{Type: EventProgress, Done: done, Total: total, Stock: &stock}
		if err := writeEvent(conn, event); err != nil {
			log.WithError(err).Debug("Stream write failed")
			cancel()
		}
	})
	if ctx.Err() != nil {
		log.Info("Validation stream closed by client")
		return
	}
	if err != nil {
		status := statusFor(err)
		message := "No stocks passed quality validation"
		if status == http.StatusInternalServerError {
			log.WithError(err).Error("Stock validation failed")
			message = "Stock validation failed"
		}
		h.finish(conn, StreamEvent{Type: EventError, Status: status, Error: message})
		return
	}

	h.finish(conn, StreamEvent{Type: EventResult, Stocks: selected, Count: len(selected)})
}

// finish writes the last event and closes the stream normally
func (h *StockHandler) finish(conn *websocket.Conn, event StreamEvent) {
	if err := writeEvent(conn, event); err != nil {
		h.logger.WithError(err).Debug("Stream write failed")
		return
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, event.Type)
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(streamWriteWait))
}

func writeEvent(conn *websocket.Conn, event StreamEvent) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(event)
}

// readUntilClosed handles pong/close frames and cancels on disconnect
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pingLoop keeps long validation batches alive
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
