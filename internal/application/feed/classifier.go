package feed

import (
	signalDomain "trade-signals/internal/domain/signal"
)

// Tag 標記變更事件種類，與 feed 協定的字串一致。
type Tag string

const (
	TagAdded    Tag = "added"
	TagModified Tag = "modified"
	TagRemoved  Tag = "removed"
)

// Change 為 feed 傳來的單筆變更，帶完整當前紀錄。
type Change struct {
	Tag    Tag                 `json:"tag"`
	Record signalDomain.Signal `json:"record"`
}

// Batch 為一次送達的變更集合。Rehydrate 表示此為連線建立後的第一批，
// 內容是完整現況而非增量。
type Batch struct {
	Changes   []Change `json:"changes"`
	Rehydrate bool     `json:"-"`
}

// AlertKind 區分要對使用者提示的種類。
type AlertKind string

const (
	AlertNewSignal    AlertKind = "new-signal"
	AlertStatusChange AlertKind = "status-change"
)

// Alert 是分類後要提示的一筆變更。
type Alert struct {
	Kind   AlertKind
	Signal signalDomain.Signal
}

// meaningful statuses: 已提示過入場的訊號，後續只有這些狀態值得再提示。
var meaningfulStatus = map[signalDomain.Status]bool{
	signalDomain.StatusBreakEven: true,
	signalDomain.StatusTarget1:   true,
	signalDomain.StatusTarget2:   true,
	signalDomain.StatusTarget3:   true,
}

// Classifier 判斷 feed 變更是否為使用者未見過的新資訊。
// 首批視為 hydration、只建快照不提示，之後才逐批比對。
// 非併發安全：同一時間只能有一個 goroutine 呼叫 Apply。
type Classifier struct {
	hydrated bool
	snapshot map[string]signalDomain.Status
}

// NewClassifier 建立尚未 hydrate 的分類器。
func NewClassifier() *Classifier {
	return &Classifier{snapshot: make(map[string]signalDomain.Status)}
}

// Reset 清除 hydration 狀態；重連後下一批會重新視為 hydration。
func (c *Classifier) Reset() {
	c.hydrated = false
	c.snapshot = make(map[string]signalDomain.Status)
}

// Hydrated 回傳是否已完成首批載入。
func (c *Classifier) Hydrated() bool {
	return c.hydrated
}

// Apply 分類一批變更並回傳要提示的項目。
// 分類一律比對前一份快照；快照在整批處理完後才替換。
func (c *Classifier) Apply(batch Batch) []Alert {
	if !c.hydrated {
		c.snapshot = applyChanges(c.snapshot, batch.Changes)
		c.hydrated = true
		return nil
	}

	var alerts []Alert
	for _, ch := range batch.Changes {
		rec := ch.Record
		prev, known := c.snapshot[rec.ID]
		switch ch.Tag {
		case TagAdded:
			if rec.Status == signalDomain.StatusActive && !known {
				alerts = append(alerts, Alert{Kind: AlertNewSignal, Signal: rec})
			}
		case TagModified:
			if meaningfulStatus[rec.Status] && (!known || prev != rec.Status) {
				alerts = append(alerts, Alert{Kind: AlertStatusChange, Signal: rec})
			}
		}
	}
	c.snapshot = applyChanges(c.snapshot, batch.Changes)
	return alerts
}

func applyChanges(prev map[string]signalDomain.Status, changes []Change) map[string]signalDomain.Status {
	next := make(map[string]signalDomain.Status, len(prev)+len(changes))
	for id, st := range prev {
		next[id] = st
	}
	for _, ch := range changes {
		switch ch.Tag {
		case TagRemoved:
			delete(next, ch.Record.ID)
		default:
			next[ch.Record.ID] = ch.Record.Status
		}
	}
	return next
}
