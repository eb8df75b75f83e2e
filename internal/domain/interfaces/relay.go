package interfaces

import (
	"context"

	domaintypes "github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain/types"
)

// KeyDirectory is the remote public key directory.
type KeyDirectory interface {
	PublishKey(ctx context.Context, userID domaintypes.UserID, pub domaintypes.PublicKey) error
	FetchKey(ctx context.Context, userID domaintypes.UserID) (domaintypes.PeerPublicKeyRecord, error)
	FetchKeys(
		ctx context.Context,
		userIDs []domaintypes.UserID,
	) (map[domaintypes.UserID]domaintypes.PeerPublicKeyRecord, error)
	DeleteKey(ctx context.Context, userID domaintypes.UserID) error
}

// MessageTransport moves opaque envelopes to and from the message store.
type MessageTransport interface {
	SendMessage(ctx context.Context, req domaintypes.SendMessageRequest) (domaintypes.Envelope, error)
	ListMessages(
		ctx context.Context,
		chatID domaintypes.ChatID,
		limit, offset int,
	) (domaintypes.MessagePage, error)
	ListChats(ctx context.Context) ([]domaintypes.ChatSummary, error)
	MarkRead(ctx context.Context, chatID domaintypes.ChatID) (int, error)
	DeleteMessage(ctx context.Context, id domaintypes.MessageID) error
	UnreadCount(ctx context.Context) (int, error)
}
