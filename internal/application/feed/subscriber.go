package feed

import (
	"context"
	"errors"
	"log"
)

// Source 提供依序送達的變更批次。Next 阻塞直到下一批可用或 ctx 結束；
// 實作需保證批次不重排、不丟失，重連後的首批標記 Rehydrate。
type Source interface {
	Next(ctx context.Context) (Batch, error)
}

// Subscriber 以單一 goroutine 依序消費批次並觸發提示。
type Subscriber struct {
	source     Source
	classifier *Classifier
	sink       func(Alert)
}

// NewSubscriber 建立訂閱者；sink 為每筆提示的處理函式（播音效等）。
func NewSubscriber(source Source, sink func(Alert)) *Subscriber {
	return &Subscriber{
		source:     source,
		classifier: NewClassifier(),
		sink:       sink,
	}
}

// Run 進入消費迴圈直到 ctx 取消。批次嚴格依抵達順序處理，
// 重連批次會先重置分類器使其重新進入 hydration。
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		batch, err := s.source.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			log.Printf("feed source failed: %v", err)
			return err
		}
		if batch.Rehydrate {
			s.classifier.Reset()
		}
		for _, a := range s.classifier.Apply(batch) {
			if s.sink != nil {
				s.sink(a)
			}
		}
	}
}
