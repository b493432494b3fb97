package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	signalDomain "trade-signals/internal/domain/signal"
)

type registerDeviceRequest struct {
	PushAddress string `json:"push_address"`
}

// handleRegisterDevice 登記呼叫者目前的推播位址（一人一址、後寫覆蓋）。
func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
		return
	}
	var body registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}

	reg := signalDomain.DeviceRegistration{
		UserID:      userIDFrom(r.Context()),
		PushAddress: strings.TrimSpace(body.PushAddress),
	}
	if err := reg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}

	if err := s.devices.Upsert(r.Context(), reg); err != nil {
		log.Printf("device upsert failed user_id=%s: %v", reg.UserID, err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}
	log.Printf("device registered user_id=%s", reg.UserID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
