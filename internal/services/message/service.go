package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/crypto"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// SentNamespace holds the plaintext of messages sent from this device,
// keyed by message id. The sender cannot decrypt its own envelopes.
const SentNamespace = "sent_messages"

// ErrEmptyMessage is returned when sending blank text.
var ErrEmptyMessage = errors.New("message text is empty")

// Service sends and opens messages for one user.
type Service struct {
	me        domain.UserID
	keys      domain.KeyStore
	directory domain.KeyDirectoryService
	sessions  domain.SessionService
	transport domain.MessageTransport
	sent      domain.KeyValueStore
	workers   int
	log       *zap.Logger
}

// Config collects the collaborators of a Service.
type Config struct {
	Me        domain.UserID
	Keys      domain.KeyStore
	Directory domain.KeyDirectoryService
	Sessions  domain.SessionService
	Transport domain.MessageTransport
	// Sent remembers plaintexts of sent messages; it should not be persistent.
	Sent domain.KeyValueStore
	// Workers bounds concurrent decryption; zero uses crypto.DefaultWorkers.
	Workers int
	Logger  *zap.Logger
}

// New constructs a message Service.
func New(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		me:        cfg.Me,
		keys:      cfg.Keys,
		directory: cfg.Directory,
		sessions:  cfg.Sessions,
		transport: cfg.Transport,
		sent:      cfg.Sent,
		workers:   cfg.Workers,
		log:       log,
	}
}

// Send encrypts text for peer and posts it.
//
// It fails with an error matching domain.ErrKeyAbsent when the user has no
// private key (run key initialization first) or when peer has not published
// a public key (the message cannot be composed).
func (s *Service) Send(
	ctx context.Context,
	peer domain.UserID,
	text string,
	messageType domain.MessageType,
	metadata map[string]any,
) (domain.Envelope, error) {
	messageType, err := s.checkOutgoing(text, messageType)
	if err != nil {
		return domain.Envelope{}, err
	}
	if err := s.checkRecipient(peer); err != nil {
		return domain.Envelope{}, err
	}

	priv, ok := s.keys.Retrieve(ctx, s.me)
	if !ok {
		return domain.Envelope{}, &domain.KeyAbsentError{UserID: s.me}
	}
	defer crypto.Wipe(priv[:])

	rec, err := s.directory.FetchOne(ctx, peer)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("resolve key of %s: %w", peer, err)
	}
	return s.sealAndPost(ctx, priv, peer, rec.PublicKey, text, messageType, metadata)
}

// SendMany seals one envelope per recipient, resolving their keys in one
// directory lookup. A failing recipient does not stop the others; its error
// is reported in its SendResult. Duplicate and empty ids are skipped.
//
// The returned error is set only when nothing could be attempted: bad input
// or no local private key.
func (s *Service) SendMany(
	ctx context.Context,
	peers []domain.UserID,
	text string,
	messageType domain.MessageType,
	metadata map[string]any,
) ([]domain.SendResult, error) {
	messageType, err := s.checkOutgoing(text, messageType)
	if err != nil {
		return nil, err
	}

	targets := make([]domain.UserID, 0, len(peers))
	seen := make(map[domain.UserID]struct{}, len(peers))
	for _, p := range peers {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		targets = append(targets, p)
	}
	if len(targets) == 0 {
		return nil, errors.New("no recipients")
	}

	priv, ok := s.keys.Retrieve(ctx, s.me)
	if !ok {
		return nil, &domain.KeyAbsentError{UserID: s.me}
	}
	defer crypto.Wipe(priv[:])

	recs, lookupErr := s.directory.FetchMany(ctx, targets)
	results := make([]domain.SendResult, len(targets))
	for i, peer := range targets {
		results[i].Peer = peer
		if err := s.checkRecipient(peer); err != nil {
			results[i].Err = err
			continue
		}
		rec, found := recs[peer]
		switch {
		case found:
			results[i].Envelope, results[i].Err = s.sealAndPost(ctx, priv, peer, rec.PublicKey, text, messageType, metadata)
		case lookupErr != nil:
			results[i].Err = fmt.Errorf("resolve key of %s: %w", peer, lookupErr)
		default:
			results[i].Err = fmt.Errorf("resolve key of %s: %w", peer, &domain.KeyAbsentError{UserID: peer, Peer: true})
		}
	}
	return results, nil
}

func (s *Service) checkOutgoing(text string, messageType domain.MessageType) (domain.MessageType, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	if messageType == "" {
		messageType = domain.MessageText
	}
	if !messageType.Valid() {
		return "", fmt.Errorf("unknown message type %q", messageType)
	}
	return messageType, nil
}

func (s *Service) checkRecipient(peer domain.UserID) error {
	if peer == "" || peer == s.me {
		return fmt.Errorf("invalid recipient %q", peer)
	}
	return nil
}

// sealAndPost encrypts text for peer's key and hands the envelope to the
// transport.
func (s *Service) sealAndPost(
	ctx context.Context,
	priv domain.PrivateKey,
	peer domain.UserID,
	peerKey domain.PublicKey,
	text string,
	messageType domain.MessageType,
	metadata map[string]any,
) (domain.Envelope, error) {
	sealed, err := crypto.Encrypt(text, peerKey, priv)
	if err != nil {
		return domain.Envelope{}, err
	}

	env, err := s.transport.SendMessage(ctx, domain.SendMessageRequest{
		ChatID:             s.sessions.StartChat(peer),
		ReceiverID:         peer,
		Ciphertext:         sealed.Ciphertext,
		Nonce:              sealed.Nonce[:],
		EphemeralPublicKey: sealed.EphemeralPublicKey[:],
		MessageType:        messageType,
		Metadata:           metadata,
	})
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("send to %s: %w", peer, err)
	}

	if s.sent != nil && env.ID != "" {
		if err := s.sent.Set(ctx, SentNamespace, env.ID.String(), []byte(text)); err != nil {
			s.log.Warn("remembering sent message failed", zap.Error(err))
		}
	}
	s.sessions.AppendSent(env)

	s.log.Debug("message sent",
		zap.String("chat_id", env.ChatID.String()),
		zap.String("message_id", env.ID.String()),
		zap.String("peer_fingerprint", crypto.Fingerprint(peerKey).String()),
	)
	return env, nil
}

// Open loads a page of the chat with peer, decrypts it and marks the chat
// read. When marking read fails the decrypted page is still returned along
// with the error.
func (s *Service) Open(
	ctx context.Context,
	peer domain.UserID,
	limit, offset int,
) (domain.MessagePage, []domain.DisplayMessage, error) {
	chatID := s.sessions.StartChat(peer)
	page, err := s.sessions.LoadMessages(ctx, chatID, limit, offset)
	if err != nil {
		return domain.MessagePage{}, nil, err
	}
	shown := s.Display(ctx, page.Messages)

	if s.sessions.UnreadCount(chatID) > 0 {
		if _, err := s.sessions.MarkRead(ctx, chatID); err != nil {
			return page, shown, err
		}
	}
	return page, shown, nil
}

// Display pairs each envelope with the text the UI should render.
func (s *Service) Display(ctx context.Context, envs []domain.Envelope) []domain.DisplayMessage {
	out := make([]domain.DisplayMessage, len(envs))
	var (
		incoming []domain.Envelope
		at       []int
	)
	for i, env := range envs {
		out[i] = domain.DisplayMessage{Envelope: env, Outgoing: env.SenderID == s.me}
		if out[i].Outgoing {
			s.displaySent(ctx, &out[i])
			continue
		}
		incoming = append(incoming, env)
		at = append(at, i)
	}
	if len(incoming) == 0 {
		return out
	}

	priv, ok := s.keys.Retrieve(ctx, s.me)
	if !ok {
		for _, i := range at {
			markUndecryptable(&out[i], "no private key on this device")
		}
		return out
	}
	defer crypto.Wipe(priv[:])

	for j, r := range crypto.DecryptBatch(ctx, incoming, priv, s.workers) {
		i := at[j]
		if r.Err != nil {
			markUndecryptable(&out[i], r.Err.Error())
			s.log.Debug("message undecryptable",
				zap.String("message_id", out[i].Envelope.ID.String()),
				zap.Error(r.Err),
			)
			continue
		}
		out[i].Plaintext = r.Plaintext
	}
	return out
}

func (s *Service) displaySent(ctx context.Context, m *domain.DisplayMessage) {
	if s.sent != nil {
		if text, ok, err := s.sent.Get(ctx, SentNamespace, m.Envelope.ID.String()); err == nil && ok {
			m.Plaintext = string(text)
			return
		}
	}
	markUndecryptable(m, "sealed for the recipient only")
}

func markUndecryptable(m *domain.DisplayMessage, reason string) {
	m.Plaintext = domain.UndecryptablePlaceholder
	m.Undecryptable = true
	m.Reason = reason
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
