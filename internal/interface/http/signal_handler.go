package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	signalapp "trade-signals/internal/application/signal"
	signalDomain "trade-signals/internal/domain/signal"
)

type createSignalRequest struct {
	Pair          string   `json:"pair"`
	Direction     string   `json:"direction"`
	OrderType     string   `json:"order_type"`
	Entry         float64  `json:"entry"`
	StopLoss      float64  `json:"stop_loss"`
	Target1       float64  `json:"target1"`
	Target2       *float64 `json:"target2,omitempty"`
	Target3       *float64 `json:"target3,omitempty"`
	AnalysisText  string   `json:"analysis_text,omitempty"`
	ChartImageRef string   `json:"chart_image_ref,omitempty"`
}

func (s *Server) handleCreateSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
		return
	}
	var body createSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}

	sig, err := s.signals.Create(r.Context(), signalapp.CreateInput{
		Pair:          body.Pair,
		Direction:     body.Direction,
		OrderType:     body.OrderType,
		Entry:         body.Entry,
		StopLoss:      body.StopLoss,
		Target1:       body.Target1,
		Target2:       body.Target2,
		Target3:       body.Target3,
		AnalysisText:  body.AnalysisText,
		ChartImageRef: body.ChartImageRef,
	})
	if err != nil {
		writeSignalError(w, err)
		return
	}

	log.Printf("signal created id=%s pair=%s direction=%s by=%s", sig.ID, sig.Pair, sig.Direction, userIDFrom(r.Context()))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"signal":  sig,
	})
}

type transitionRequest struct {
	SignalID  string `json:"signal_id"`
	NewStatus string `json:"new_status"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
		return
	}
	var body transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}
	if body.SignalID == "" {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "signal_id required")
		return
	}
	status, err := signalDomain.ParseStatus(body.NewStatus)
	if err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}

	sig, err := s.signals.Transition(r.Context(), body.SignalID, status)
	if err != nil {
		writeSignalError(w, err)
		return
	}

	log.Printf("signal transition id=%s status=%s by=%s", sig.ID, sig.Status, userIDFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"signal":  sig,
	})
}

func (s *Server) handleDeleteSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/signals/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "signal id required")
		return
	}

	if err := s.signals.Delete(r.Context(), id); err != nil {
		log.Printf("signal delete failed id=%s: %v", id, err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}
	log.Printf("signal deleted id=%s by=%s", id, userIDFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
		return
	}
	onlyActive := r.URL.Query().Get("view") != "all"

	signals, err := s.signals.List(r.Context(), onlyActive)
	if err != nil {
		log.Printf("signal list failed: %v", err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}
	if signals == nil {
		signals = []signalDomain.Signal{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"total":   len(signals),
		"signals": signals,
	})
}

// writeSignalError 把 domain 錯誤對應到 HTTP 狀態碼。
func writeSignalError(w http.ResponseWriter, err error) {
	var ve signalDomain.ValidationError
	var ite signalDomain.InvalidTransitionError
	switch {
	case errors.Is(err, signalDomain.ErrNotFound):
		writeError(w, http.StatusNotFound, errCodeNotFound, "signal not found")
	case errors.As(err, &ite):
		writeError(w, http.StatusConflict, errCodeInvalidTransition, ite.Error())
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, errCodeBadRequest, ve.Error())
	default:
		log.Printf("signal operation failed: %v", err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
	}
}
