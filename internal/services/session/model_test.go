package session_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/devrelay"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/relay"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/session"
)

const secret = "session-test-secret-01"

func newTransport(t *testing.T, base string, user domain.UserID) *relay.HTTP {
	t.Helper()
	tok, err := devrelay.IssueToken(secret, user, time.Minute)
	require.NoError(t, err)
	return relay.NewHTTP(base, tok)
}

type world struct {
	alice, bob     *session.Model
	aliceTx, bobTx *relay.HTTP
}

func newWorld(t *testing.T) *world {
	t.Helper()
	srv, err := devrelay.New(devrelay.Config{JWTSecret: secret}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	w := &world{aliceTx: newTransport(t, ts.URL, "alice"), bobTx: newTransport(t, ts.URL, "bob")}
	w.alice = session.New("alice", w.aliceTx, nil)
	w.bob = session.New("bob", w.bobTx, nil)

	var k domain.PublicKey
	k[0] = 1
	require.NoError(t, w.aliceTx.PublishKey(context.Background(), "alice", k))
	require.NoError(t, w.bobTx.PublishKey(context.Background(), "bob", k))
	return w
}

func (w *world) send(t *testing.T, from *session.Model, tx *relay.HTTP, to domain.UserID) domain.Envelope {
	t.Helper()
	env, err := tx.SendMessage(context.Background(), domain.SendMessageRequest{
		ChatID:             session.DeriveChatID(from.Me(), to),
		ReceiverID:         to,
		Ciphertext:         []byte("opaque"),
		Nonce:              make([]byte, 24),
		EphemeralPublicKey: make([]byte, 32),
	})
	require.NoError(t, err)
	from.AppendSent(env)
	return env
}

func TestUnreadAccounting(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	chat := w.alice.StartChat("bob")
	for i := 0; i < 3; i++ {
		w.send(t, w.alice, w.aliceTx, "bob")
	}

	page, err := w.bob.LoadMessages(ctx, chat, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Messages, 3)
	assert.Equal(t, 3, w.bob.UnreadCount(chat))
	assert.Equal(t, 0, w.alice.UnreadCount(chat))

	n, err := w.bob.MarkRead(ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, w.bob.UnreadCount(chat))

	sess, ok := w.bob.Session(chat)
	require.True(t, ok)
	for _, env := range sess.Messages {
		assert.True(t, env.IsRead)
	}

	// Alice's view is unaffected: she sent those messages.
	_, err = w.alice.LoadMessages(ctx, chat, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, w.alice.UnreadCount(chat))
	total, err := w.alice.TotalUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestMarkReadLeavesOwnMessagesUntouched(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	chat := session.DeriveChatID("alice", "bob")
	w.send(t, w.alice, w.aliceTx, "bob")
	w.send(t, w.bob, w.bobTx, "alice")

	_, err := w.alice.LoadMessages(ctx, chat, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, w.alice.UnreadCount(chat))

	n, err := w.alice.MarkRead(ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sess, _ := w.alice.Session(chat)
	require.Len(t, sess.Messages, 2)
	assert.False(t, sess.Messages[0].IsRead, "alice's own message keeps its read flag")
	assert.True(t, sess.Messages[1].IsRead)
}

func TestLoadMessages_OrderedAndPaginated(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	chat := session.DeriveChatID("alice", "bob")
	var sent []domain.Envelope
	for i := 0; i < 4; i++ {
		sent = append(sent, w.send(t, w.alice, w.aliceTx, "bob"))
	}

	page, err := w.bob.LoadMessages(ctx, chat, 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, sent[2].ID, page.Messages[0].ID)
	assert.Equal(t, sent[3].ID, page.Messages[1].ID)
	assert.True(t, page.HasMore)
	assert.Equal(t, 4, page.Total)

	older, err := w.bob.LoadMessages(ctx, chat, 2, 2)
	require.NoError(t, err)
	assert.False(t, older.HasMore)

	sess, _ := w.bob.Session(chat)
	require.Len(t, sess.Messages, 4)
	for i, env := range sess.Messages {
		assert.Equal(t, sent[i].ID, env.ID)
	}
	assert.Equal(t, domain.UserID("alice"), sess.ParticipantA)
	assert.Equal(t, domain.UserID("bob"), sess.ParticipantB)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	chat := session.DeriveChatID("alice", "bob")
	env := w.send(t, w.alice, w.aliceTx, "bob")

	_, err := w.bob.LoadMessages(ctx, chat, 0, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, w.bob.Remove(ctx, env.ID), domain.ErrForbidden)

	require.NoError(t, w.alice.Remove(ctx, env.ID))
	sess, _ := w.alice.Session(chat)
	assert.Empty(t, sess.Messages)

	assert.ErrorIs(t, w.alice.Remove(ctx, env.ID), domain.ErrMessageNotFound)
}

func TestChats(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.send(t, w.alice, w.aliceTx, "bob")
	w.send(t, w.alice, w.aliceTx, "bob")

	chats, err := w.bob.Chats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, session.DeriveChatID("bob", "alice"), chats[0].ChatID)
	assert.Equal(t, 2, chats[0].MessageCount)
	assert.Equal(t, 2, chats[0].UnreadCount)
}
