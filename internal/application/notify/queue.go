package notify

import (
	"context"
	"log"

	notifyDomain "trade-signals/internal/domain/notify"
)

// Queue 將通知事件排入背景廣播，讓生命週期寫入不等待扇出完成。
type Queue struct {
	dispatcher *Dispatcher
	events     chan notifyDomain.Event
	stopChan   chan struct{}
	doneChan   chan struct{}
}

// NewQueue 建立事件佇列；size 未設定時預設 64。
func NewQueue(dispatcher *Dispatcher, size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{
		dispatcher: dispatcher,
		events:     make(chan notifyDomain.Event, size),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Enqueue 排入一個事件。佇列滿時丟棄並記錄，絕不阻塞呼叫端。
func (q *Queue) Enqueue(event notifyDomain.Event) {
	select {
	case q.events <- event:
	default:
		log.Printf("notify queue full, dropping event title=%q", event.Title)
	}
}

// Start 啟動背景迴圈，逐一廣播事件。
func (q *Queue) Start() {
	go func() {
		defer close(q.doneChan)
		for {
			select {
			case ev := <-q.events:
				q.dispatcher.Broadcast(context.Background(), ev)
			case <-q.stopChan:
				return
			}
		}
	}()
}

// Stop 停止迴圈並等待當前廣播結束。
func (q *Queue) Stop() {
	close(q.stopChan)
	<-q.doneChan
}
