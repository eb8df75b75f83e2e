package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

type chatsResponse struct {
	Chats []domain.ChatSummary `json:"chats"`
}

type markReadResponse struct {
	UpdatedCount int `json:"updatedCount"`
}

type unreadResponse struct {
	UnreadCount int `json:"unreadCount"`
}

// SendMessage posts an envelope and returns it as stored, with id and
// timestamps assigned by the server.
func (c *HTTP) SendMessage(ctx context.Context, req domain.SendMessageRequest) (domain.Envelope, error) {
	var env domain.Envelope
	if err := c.doWrapped(ctx, "send message", http.MethodPost, "/messages", req, &env); err != nil {
		return domain.Envelope{}, err
	}
	return env, nil
}

// ListMessages returns up to limit envelopes of chatID after skipping the
// offset newest ones, oldest first.
func (c *HTTP) ListMessages(
	ctx context.Context,
	chatID domain.ChatID,
	limit, offset int,
) (domain.MessagePage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/messages/" + url.PathEscape(chatID.String())
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page domain.MessagePage
	if err := c.doWrapped(ctx, "list messages", http.MethodGet, path, nil, &page); err != nil {
		return domain.MessagePage{}, err
	}
	return page, nil
}

// ListChats returns a summary per conversation of the authenticated user.
func (c *HTTP) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	var out chatsResponse
	if err := c.doWrapped(ctx, "list chats", http.MethodGet, "/messages/chats", nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

// MarkRead marks every unread message addressed to the caller in chatID as
// read and returns how many changed.
func (c *HTTP) MarkRead(ctx context.Context, chatID domain.ChatID) (int, error) {
	var out markReadResponse
	path := "/messages/" + url.PathEscape(chatID.String()) + "/read"
	if err := c.doWrapped(ctx, "mark read", http.MethodPut, path, nil, &out); err != nil {
		return 0, err
	}
	return out.UpdatedCount, nil
}

// DeleteMessage removes a message sent by the caller.
func (c *HTTP) DeleteMessage(ctx context.Context, id domain.MessageID) error {
	err := c.doWrapped(ctx, "delete message", http.MethodDelete,
		"/messages/"+url.PathEscape(id.String()), nil, nil)
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return fmt.Errorf("delete message %s: %w", id, domain.ErrMessageNotFound)
	case statusOf(err) == http.StatusForbidden:
		return fmt.Errorf("delete message %s: %w", id, domain.ErrForbidden)
	default:
		return err
	}
}

// UnreadCount returns the number of unread messages addressed to the caller.
func (c *HTTP) UnreadCount(ctx context.Context) (int, error) {
	var out unreadResponse
	if err := c.doWrapped(ctx, "unread count", http.MethodGet, "/messages/unread/count", nil, &out); err != nil {
		return 0, err
	}
	return out.UnreadCount, nil
}

// Compile-time assertion that HTTP implements domain.MessageTransport.
var _ domain.MessageTransport = (*HTTP)(nil)
