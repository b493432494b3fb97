package signal

import (
	"errors"
	"fmt"
	"time"
)

// Direction 表示訊號方向。
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Status 表示訊號生命週期狀態，字串值與儲存層/前端一致，區分大小寫。
type Status string

const (
	StatusActive    Status = "Active"
	StatusBreakEven Status = "BE"
	StatusTarget1   Status = "TP1"
	StatusTarget2   Status = "TP2"
	StatusTarget3   Status = "TP3"
	StatusClosed    Status = "CLOSED"
	StatusStopped   Status = "STOPPED"
)

// transitions 定義單向狀態機：獲利路徑逐級前進，Active 之後任一非終態可直接出場。
var transitions = map[Status][]Status{
	StatusActive:    {StatusBreakEven, StatusTarget1, StatusClosed, StatusStopped},
	StatusBreakEven: {StatusTarget1, StatusClosed, StatusStopped},
	StatusTarget1:   {StatusTarget2, StatusClosed, StatusStopped},
	StatusTarget2:   {StatusTarget3, StatusClosed, StatusStopped},
	StatusTarget3:   {},
	StatusClosed:    {},
	StatusStopped:   {},
}

// ParseStatus 驗證字串是否為合法狀態值。
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", s)}
	}
	return st, nil
}

// Terminal 回傳狀態是否為終態，終態後不再接受任何轉移。
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition 檢查 s -> to 是否為合法前進。
func (s Status) CanTransition(to Status) bool {
	for _, n := range transitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

// Signal 代表一筆已發佈的交易訊號。
type Signal struct {
	ID            string    `json:"id"`
	Pair          string    `json:"pair"`
	Direction     Direction `json:"direction"`
	OrderType     string    `json:"order_type"`
	Entry         float64   `json:"entry"`
	StopLoss      float64   `json:"stop_loss"`
	Target1       float64   `json:"target1"`
	Target2       *float64  `json:"target2,omitempty"`
	Target3       *float64  `json:"target3,omitempty"`
	AnalysisText  string    `json:"analysis_text,omitempty"`
	ChartImageRef string    `json:"chart_image_ref,omitempty"`
	Status        Status    `json:"status"`
	FollowerCount int       `json:"follower_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Active 回傳訊號是否仍在進行中（非終態）。
func (s Signal) Active() bool {
	return !s.Status.Terminal()
}

// ErrNotFound 表示指定的訊號不存在。
var ErrNotFound = errors.New("signal not found")

// ValidationError 表示建立訊號時的欄位錯誤。
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError 表示不合法的狀態轉移請求。
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e InvalidTransitionError) Error() string {
	if e.From.Terminal() {
		return fmt.Sprintf("signal already terminal in %s, cannot move to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// Validate 檢查必要價位與目標價方向一致性。
func (s Signal) Validate() error {
	if s.Pair == "" {
		return ValidationError{Field: "pair", Reason: "required"}
	}
	switch s.Direction {
	case DirectionBuy, DirectionSell:
	default:
		return ValidationError{Field: "direction", Reason: "must be BUY or SELL"}
	}
	if s.Entry <= 0 {
		return ValidationError{Field: "entry", Reason: "must be a positive price"}
	}
	if s.StopLoss <= 0 {
		return ValidationError{Field: "stop_loss", Reason: "must be a positive price"}
	}
	if s.Target1 <= 0 {
		return ValidationError{Field: "target1", Reason: "must be a positive price"}
	}
	// 目標價需沿方向遞進：BUY 遞增、SELL 遞減。
	prev := s.Target1
	for i, t := range []*float64{s.Target2, s.Target3} {
		if t == nil {
			continue
		}
		field := fmt.Sprintf("target%d", i+2)
		if *t <= 0 {
			return ValidationError{Field: field, Reason: "must be a positive price"}
		}
		if s.Direction == DirectionBuy && *t <= prev {
			return ValidationError{Field: field, Reason: "must be above the previous target for BUY"}
		}
		if s.Direction == DirectionSell && *t >= prev {
			return ValidationError{Field: field, Reason: "must be below the previous target for SELL"}
		}
		prev = *t
	}
	return nil
}
