package auth

import "time"

// Token 封裝簽發後的 access token。
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}
