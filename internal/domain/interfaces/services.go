package interfaces

import (
	"context"

	domaintypes "github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain/types"
)

// IdentityService creates, inspects and replaces the local key pair.
type IdentityService interface {
	Initialize(ctx context.Context, userID domaintypes.UserID) (domaintypes.KeyStatus, error)
	Regenerate(ctx context.Context, userID domaintypes.UserID) (domaintypes.KeyStatus, error)
	Revoke(ctx context.Context, userID domaintypes.UserID) error
	Status(ctx context.Context, userID domaintypes.UserID) domaintypes.KeyStatus
	Validate(ctx context.Context, userID domaintypes.UserID) error
}

// KeyDirectoryService is the cached view of the key directory.
type KeyDirectoryService interface {
	Publish(ctx context.Context, userID domaintypes.UserID, pub domaintypes.PublicKey) error
	FetchOne(ctx context.Context, peer domaintypes.UserID) (domaintypes.PeerPublicKeyRecord, error)
	FetchMany(
		ctx context.Context,
		peers []domaintypes.UserID,
	) (map[domaintypes.UserID]domaintypes.PeerPublicKeyRecord, error)
	Unpublish(ctx context.Context, userID domaintypes.UserID) error
	Cached(ctx context.Context, peer domaintypes.UserID) (domaintypes.PeerPublicKeyRecord, bool)
	ClearCache(ctx context.Context) error
}

// SessionService tracks conversations of the local user.
type SessionService interface {
	Me() domaintypes.UserID
	StartChat(peer domaintypes.UserID) domaintypes.ChatID
	LoadMessages(
		ctx context.Context,
		chatID domaintypes.ChatID,
		limit, offset int,
	) (domaintypes.MessagePage, error)
	AppendSent(env domaintypes.Envelope)
	MarkRead(ctx context.Context, chatID domaintypes.ChatID) (int, error)
	Remove(ctx context.Context, id domaintypes.MessageID) error
	UnreadCount(chatID domaintypes.ChatID) int
	Session(chatID domaintypes.ChatID) (domaintypes.ChatSession, bool)
	Chats(ctx context.Context) ([]domaintypes.ChatSummary, error)
	TotalUnread(ctx context.Context) (int, error)
}

// MessageService encrypts, sends, fetches and decrypts messages.
type MessageService interface {
	Send(
		ctx context.Context,
		peer domaintypes.UserID,
		text string,
		messageType domaintypes.MessageType,
		metadata map[string]any,
	) (domaintypes.Envelope, error)
	SendMany(
		ctx context.Context,
		peers []domaintypes.UserID,
		text string,
		messageType domaintypes.MessageType,
		metadata map[string]any,
	) ([]domaintypes.SendResult, error)
	Open(
		ctx context.Context,
		peer domaintypes.UserID,
		limit, offset int,
	) (domaintypes.MessagePage, []domaintypes.DisplayMessage, error)
	Display(ctx context.Context, envs []domaintypes.Envelope) []domaintypes.DisplayMessage
}
