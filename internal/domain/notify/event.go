package notify

import (
	"strconv"

	signalDomain "trade-signals/internal/domain/signal"
)

// Event 封裝一次要廣播的通知內容，僅存在於發送當下，不落地。
type Event struct {
	Title string
	Body  string
	Data  Payload
}

// Payload 為推播附帶的結構化資料，供客戶端 deep-link。
type Payload struct {
	SignalID string              `json:"signal_id"`
	Pair     string              `json:"pair"`
	Status   signalDomain.Status `json:"status"`
}

// DispatchReport 統計單次廣播結果。
type DispatchReport struct {
	Attempted int
	Delivered int
}

// EventForCreate 產生新訊號通知。
func EventForCreate(s signalDomain.Signal) Event {
	return Event{
		Title: "New Signal",
		Body:  string(s.Direction) + " " + s.Pair + " @ " + formatPrice(s.Entry),
		Data:  Payload{SignalID: s.ID, Pair: s.Pair, Status: s.Status},
	}
}

// EventForStatus 依新狀態產生對應的通知文案。
func EventForStatus(s signalDomain.Signal) Event {
	var title, body string
	switch s.Status {
	case signalDomain.StatusBreakEven:
		title = "Risk Eliminated"
		body = s.Pair + " moved to break-even, risk eliminated"
	case signalDomain.StatusTarget1, signalDomain.StatusTarget2, signalDomain.StatusTarget3:
		title = "Profit Secured"
		body = s.Pair + " hit " + string(s.Status) + ", profit secured"
	case signalDomain.StatusStopped:
		title = "Signal Stopped"
		body = s.Pair + " hit stop loss"
	default:
		title = "Signal Closed"
		body = s.Pair + " closed at " + string(s.Status)
	}
	return Event{
		Title: title,
		Body:  body,
		Data:  Payload{SignalID: s.ID, Pair: s.Pair, Status: s.Status},
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
