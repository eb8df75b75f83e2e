package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// DefaultPageSize is used by LoadMessages when the caller passes no limit.
const DefaultPageSize = 50

// Model holds the sessions of one authenticated user.
//
// Per chat the state moves between "no messages", "all read" and "some
// unread". Read state is a per-message flag; a chat's unread count is the
// number of envelopes addressed to the user that are not read.
type Model struct {
	me        domain.UserID
	transport domain.MessageTransport
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[domain.ChatID]*domain.ChatSession
}

// New returns a Model for me over transport. A nil logger disables logging.
func New(me domain.UserID, transport domain.MessageTransport, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{
		me:        me,
		transport: transport,
		log:       log,
		sessions:  make(map[domain.ChatID]*domain.ChatSession),
	}
}

// Me returns the user the model belongs to.
func (m *Model) Me() domain.UserID { return m.me }

// StartChat returns the chat id with peer, creating an empty session.
func (m *Model) StartChat(peer domain.UserID) domain.ChatID {
	id := DeriveChatID(m.me, peer)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionLocked(id)
	return id
}

// sessionLocked returns the session of id, creating it if needed.
func (m *Model) sessionLocked(id domain.ChatID) *domain.ChatSession {
	if s, ok := m.sessions[id]; ok {
		return s
	}
	a, b := m.me, domain.UserID("")
	if peer, ok := PeerOf(id, m.me); ok {
		b = peer
		if b < a {
			a, b = b, a
		}
	}
	s := &domain.ChatSession{ChatID: id, ParticipantA: a, ParticipantB: b}
	m.sessions[id] = s
	return s
}

// LoadMessages fetches one page of chatID, oldest first, and merges it into
// the session. Offset counts back from the newest message.
func (m *Model) LoadMessages(
	ctx context.Context,
	chatID domain.ChatID,
	limit, offset int,
) (domain.MessagePage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	page, err := m.transport.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return domain.MessagePage{}, fmt.Errorf("load messages of %s: %w", chatID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessionLocked(chatID)
	if offset == 0 {
		// The newest page replaces the session's messages.
		s.Messages = s.Messages[:0]
	}
	for _, env := range page.Messages {
		m.upsertLocked(s, env)
	}
	m.recountLocked(s)
	return page, nil
}

// AppendSent adds an envelope the user just sent to its session.
func (m *Model) AppendSent(env domain.Envelope) {
	if env.ChatID == "" {
		env.ChatID = DeriveChatID(env.SenderID, env.ReceiverID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessionLocked(env.ChatID)
	m.upsertLocked(s, env)
	m.recountLocked(s)
}

// MarkRead marks every unread envelope addressed to the user in chatID as
// read. Envelopes the user sent are unaffected.
func (m *Model) MarkRead(ctx context.Context, chatID domain.ChatID) (int, error) {
	n, err := m.transport.MarkRead(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("mark %s read: %w", chatID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		for i := range s.Messages {
			if s.Messages[i].AddressedTo(m.me) {
				s.Messages[i].IsRead = true
			}
		}
		m.recountLocked(s)
	}
	m.log.Debug("chat marked read", zap.String("chat_id", chatID.String()), zap.Int("updated", n))
	return n, nil
}

// Remove deletes a message the user sent. Only the sender may delete; the
// store enforces it and a refusal is returned as domain.ErrForbidden.
func (m *Model) Remove(ctx context.Context, id domain.MessageID) error {
	err := m.transport.DeleteMessage(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrMessageNotFound) {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		before := len(s.Messages)
		s.Messages = slices.DeleteFunc(s.Messages, func(env domain.Envelope) bool { return env.ID == id })
		if len(s.Messages) != before {
			m.recountLocked(s)
		}
	}
	return err
}

// UnreadCount returns the unread count of chatID as last loaded.
func (m *Model) UnreadCount(chatID domain.ChatID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		return s.UnreadCount
	}
	return 0
}

// Session returns a copy of the session of chatID.
func (m *Model) Session(chatID domain.ChatID) (domain.ChatSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return domain.ChatSession{}, false
	}
	out := *s
	out.Messages = slices.Clone(s.Messages)
	return out, true
}

// Chats lists the user's conversations from the message store.
func (m *Model) Chats(ctx context.Context) ([]domain.ChatSummary, error) {
	chats, err := m.transport.ListChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

// TotalUnread returns the number of unread messages across all chats.
func (m *Model) TotalUnread(ctx context.Context) (int, error) {
	n, err := m.transport.UnreadCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}

// upsertLocked inserts env keeping Messages ordered by creation time. An
// envelope already present is replaced.
func (m *Model) upsertLocked(s *domain.ChatSession, env domain.Envelope) {
	if env.ID != "" {
		if i := slices.IndexFunc(s.Messages, func(e domain.Envelope) bool { return e.ID == env.ID }); i >= 0 {
			s.Messages[i] = env
			return
		}
	}
	i := len(s.Messages)
	for i > 0 && s.Messages[i-1].CreatedAt.After(env.CreatedAt) {
		i--
	}
	s.Messages = slices.Insert(s.Messages, i, env)
}

func (m *Model) recountLocked(s *domain.ChatSession) {
	n := 0
	for _, env := range s.Messages {
		if env.AddressedTo(m.me) && !env.IsRead {
			n++
		}
	}
	s.UnreadCount = n
}

// Compile-time assertion that Model implements domain.SessionService.
var _ domain.SessionService = (*Model)(nil)
