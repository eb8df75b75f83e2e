package devrelay

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

var (
	errNotFound  = errors.New("not found")
	errForbidden = errors.New("forbidden")
)

// memory holds every key and envelope. Messages are kept in arrival order,
// which is also creation order.
type memory struct {
	mu       sync.RWMutex
	keys     map[domain.UserID]domain.PeerPublicKeyRecord
	messages []*domain.Envelope
	now      func() time.Time
}

func newMemory(now func() time.Time) *memory {
	return &memory{keys: make(map[domain.UserID]domain.PeerPublicKeyRecord), now: now}
}

func (m *memory) putKey(userID domain.UserID, pub domain.PublicKey) domain.PeerPublicKeyRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	rec, exists := m.keys[userID]
	if !exists {
		rec = domain.PeerPublicKeyRecord{UserID: userID, CreatedAt: now}
	}
	rec.PublicKey = pub
	rec.UpdatedAt = now
	m.keys[userID] = rec
	return rec
}

func (m *memory) key(userID domain.UserID) (domain.PeerPublicKeyRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.keys[userID]
	return rec, ok
}

func (m *memory) deleteKey(userID domain.UserID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[userID]
	delete(m.keys, userID)
	return ok
}

func (m *memory) keyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// addMessage stores an envelope from sender. The sender's published key is
// recorded as the sender reference.
func (m *memory) addMessage(sender domain.UserID, req domain.SendMessageRequest) (domain.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	senderKey, ok := m.keys[sender]
	if !ok {
		return domain.Envelope{}, errNotFound
	}
	now := m.now().UTC()
	if n := len(m.messages); n > 0 && !now.After(m.messages[n-1].CreatedAt) {
		now = m.messages[n-1].CreatedAt.Add(time.Microsecond)
	}
	msgType := req.MessageType
	if msgType == "" {
		msgType = domain.MessageText
	}
	env := &domain.Envelope{
		ID:                 domain.MessageID(uuid.NewString()),
		ChatID:             req.ChatID,
		SenderID:           sender,
		ReceiverID:         req.ReceiverID,
		Ciphertext:         slices.Clone(req.Ciphertext),
		Nonce:              slices.Clone(req.Nonce),
		EphemeralPublicKey: slices.Clone(req.EphemeralPublicKey),
		SenderPublicKeyRef: senderKey.PublicKey.Slice(),
		MessageType:        msgType,
		Metadata:           req.Metadata,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	m.messages = append(m.messages, env)
	return *env, nil
}

func visibleTo(env *domain.Envelope, user domain.UserID) bool {
	return env.SenderID == user || env.ReceiverID == user
}

// page returns the newest limit messages after skipping offset, oldest first.
func (m *memory) page(user domain.UserID, chatID domain.ChatID, limit, offset int) domain.MessagePage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var visible []*domain.Envelope
	for _, env := range m.messages {
		if env.ChatID == chatID && visibleTo(env, user) {
			visible = append(visible, env)
		}
	}
	total := len(visible)
	out := domain.MessagePage{Messages: []domain.Envelope{}, Total: total}

	end := total - offset
	if end <= 0 || limit <= 0 {
		return out
	}
	start := max(end-limit, 0)
	for _, env := range visible[start:end] {
		out.Messages = append(out.Messages, *env)
	}
	out.HasMore = offset+len(out.Messages) < total
	return out
}

// chats summarises every conversation of user, most recent first.
func (m *memory) chats(user domain.UserID) []domain.ChatSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byChat := map[domain.ChatID]*domain.ChatSummary{}
	var order []domain.ChatID
	for _, env := range m.messages {
		if !visibleTo(env, user) {
			continue
		}
		s, ok := byChat[env.ChatID]
		if !ok {
			s = &domain.ChatSummary{ChatID: env.ChatID}
			byChat[env.ChatID] = s
			order = append(order, env.ChatID)
		}
		s.LastMessage = *env
		s.MessageCount++
		if env.ReceiverID == user && !env.IsRead {
			s.UnreadCount++
		}
	}

	out := make([]domain.ChatSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byChat[id])
	}
	slices.SortStableFunc(out, func(a, b domain.ChatSummary) int {
		return b.LastMessage.CreatedAt.Compare(a.LastMessage.CreatedAt)
	})
	return out
}

// markRead flags every unread message of chatID addressed to user.
func (m *memory) markRead(user domain.UserID, chatID domain.ChatID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	n := 0
	for _, env := range m.messages {
		if env.ChatID == chatID && env.ReceiverID == user && !env.IsRead {
			env.IsRead = true
			env.UpdatedAt = now
			n++
		}
	}
	return n
}

// deleteMessage removes a message; only its sender may do so.
func (m *memory) deleteMessage(user domain.UserID, id domain.MessageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.messages, func(env *domain.Envelope) bool { return env.ID == id })
	if i < 0 {
		return errNotFound
	}
	if m.messages[i].SenderID != user {
		return errForbidden
	}
	m.messages = slices.Delete(m.messages, i, i+1)
	return nil
}

func (m *memory) unread(user domain.UserID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, env := range m.messages {
		if env.ReceiverID == user && !env.IsRead {
			n++
		}
	}
	return n
}

func (m *memory) messageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}
