package signal

import (
	"regexp"
	"strings"
	"time"
)

// DeviceRegistration 紀錄單一使用者的推播位址，一人一址、後寫覆蓋。
type DeviceRegistration struct {
	UserID      string    `json:"user_id"`
	PushAddress string    `json:"push_address"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Expo 推播 token 形如 ExponentPushToken[xxxxxxxx]。
var pushAddressPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[[A-Za-z0-9_-]+\]$`)

// ValidPushAddress 檢查推播位址格式。
func ValidPushAddress(addr string) bool {
	return pushAddressPattern.MatchString(strings.TrimSpace(addr))
}

// Validate 基本欄位檢查。
func (d DeviceRegistration) Validate() error {
	if d.UserID == "" {
		return ValidationError{Field: "user_id", Reason: "required"}
	}
	if !ValidPushAddress(d.PushAddress) {
		return ValidationError{Field: "push_address", Reason: "not a valid push token"}
	}
	return nil
}
