package bot

import (
	"sync"

	"github.com/google/uuid"
)

// ChatKey адресует конкретное сообщение конкретного чата.
type ChatKey struct {
	ChatID    int64
	MessageID int
}

// PendingKind — вид ожидаемого ответа админа на forced-reply подсказку.
type PendingKind int

const (
	PendingShipment PendingKind = iota
	PendingRejection
)

// PendingAction — отложенное действие, привязанное к id сообщения-подсказки.
// Потребляется ровно один раз через TakePending.
type PendingAction struct {
	Kind           PendingKind
	OrderID        uuid.UUID
	ChatID         int64
	OrderMessageID int
}

// State — процессное (не персистентное) хранилище корреляций релея:
// граф типизированных рёбер между сообщениями двух сторон плюс реестр
// отложенных действий. Безопасно для конкурентного доступа.
type State struct {
	mu            sync.RWMutex
	mirrors       map[ChatKey]ChatKey   // сообщение -> его зеркальная копия на другой стороне
	headers       map[ChatKey]ChatKey   // сообщение админа -> header-сообщение у покупателя
	replyAnchors  map[ChatKey]uuid.UUID // header/счёт -> заказ (для ответов покупателя)
	messageOrders map[ChatKey]uuid.UUID // сообщение покупателя -> заказ (для правок)
	pending       map[int]PendingAction // id подсказки -> ожидаемое действие
}

func NewState() *State {
	return &State{
		mirrors:       make(map[ChatKey]ChatKey),
		headers:       make(map[ChatKey]ChatKey),
		replyAnchors:  make(map[ChatKey]uuid.UUID),
		messageOrders: make(map[ChatKey]uuid.UUID),
		pending:       make(map[int]PendingAction),
	}
}

func (s *State) PutMirror(src, dst ChatKey) {
	s.mu.Lock()
	s.mirrors[src] = dst
	s.mu.Unlock()
}

func (s *State) Mirror(src ChatKey) (ChatKey, bool) {
	s.mu.RLock()
	dst, ok := s.mirrors[src]
	s.mu.RUnlock()
	return dst, ok
}

func (s *State) PutHeader(src, dst ChatKey) {
	s.mu.Lock()
	s.headers[src] = dst
	s.mu.Unlock()
}

func (s *State) Header(src ChatKey) (ChatKey, bool) {
	s.mu.RLock()
	dst, ok := s.headers[src]
	s.mu.RUnlock()
	return dst, ok
}

func (s *State) PutReplyAnchor(key ChatKey, orderID uuid.UUID) {
	s.mu.Lock()
	s.replyAnchors[key] = orderID
	s.mu.Unlock()
}

func (s *State) ReplyAnchor(key ChatKey) (uuid.UUID, bool) {
	s.mu.RLock()
	id, ok := s.replyAnchors[key]
	s.mu.RUnlock()
	return id, ok
}

func (s *State) PutMessageOrder(key ChatKey, orderID uuid.UUID) {
	s.mu.Lock()
	s.messageOrders[key] = orderID
	s.mu.Unlock()
}

func (s *State) MessageOrder(key ChatKey) (uuid.UUID, bool) {
	s.mu.RLock()
	id, ok := s.messageOrders[key]
	s.mu.RUnlock()
	return id, ok
}

func (s *State) PutPending(promptMessageID int, a PendingAction) {
	s.mu.Lock()
	s.pending[promptMessageID] = a
	s.mu.Unlock()
}

// TakePending забирает отложенное действие с удалением (remove-on-read).
func (s *State) TakePending(promptMessageID int) (PendingAction, bool) {
	s.mu.Lock()
	a, ok := s.pending[promptMessageID]
	if ok {
		delete(s.pending, promptMessageID)
	}
	s.mu.Unlock()
	return a, ok
}
