package notify

import "errors"

// ErrAddressGone 表示推播閘道回報該位址永久失效，應於下次註冊寫入時懶清除。
var ErrAddressGone = errors.New("push address permanently invalid")
