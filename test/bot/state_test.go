package bot_test

import (
	"sync"
	"testing"

	"github.com/vladbogun1/tg-shop-miniapp/internal/bot"

	"github.com/google/uuid"
)

func TestState_PendingRemoveOnRead(t *testing.T) {
	s := bot.NewState()
	action := bot.PendingAction{
		Kind:           bot.PendingShipment,
		OrderID:        uuid.New(),
		ChatID:         100,
		OrderMessageID: 5,
	}
	s.PutPending(42, action)

	got, ok := s.TakePending(42)
	if !ok || got.OrderID != action.OrderID || got.Kind != bot.PendingShipment {
		t.Fatalf("TakePending mismatch: %+v ok=%v", got, ok)
	}

	if _, ok := s.TakePending(42); ok {
		t.Fatal("pending action must be consumed on first read")
	}
}

func TestState_EdgesAndAnchors(t *testing.T) {
	s := bot.NewState()
	src := bot.ChatKey{ChatID: -100123, MessageID: 10}
	dst := bot.ChatKey{ChatID: 555, MessageID: 20}
	orderID := uuid.New()

	s.PutMirror(src, dst)
	s.PutHeader(src, dst)
	s.PutReplyAnchor(dst, orderID)
	s.PutMessageOrder(dst, orderID)

	if got, ok := s.Mirror(src); !ok || got != dst {
		t.Fatalf("Mirror: %+v ok=%v", got, ok)
	}
	if got, ok := s.Header(src); !ok || got != dst {
		t.Fatalf("Header: %+v ok=%v", got, ok)
	}
	if got, ok := s.ReplyAnchor(dst); !ok || got != orderID {
		t.Fatalf("ReplyAnchor: %v ok=%v", got, ok)
	}
	if got, ok := s.MessageOrder(dst); !ok || got != orderID {
		t.Fatalf("MessageOrder: %v ok=%v", got, ok)
	}

	if _, ok := s.Mirror(dst); ok {
		t.Fatal("reverse lookup must miss")
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := bot.NewState()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := bot.ChatKey{ChatID: int64(n), MessageID: n}
			s.PutMirror(key, bot.ChatKey{ChatID: int64(n) + 1, MessageID: n + 1})
			s.PutPending(n, bot.PendingAction{OrderID: uuid.New()})
			s.Mirror(key)
			s.TakePending(n)
		}(i)
	}
	wg.Wait()
}
