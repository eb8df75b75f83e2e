package message_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/devrelay"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/relay"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/identity"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/keydirectory"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/message"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/session"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/store"
)

const secret = "message-test-secret-01"

// recorder keeps every request body the relay receives.
type recorder struct {
	mu     sync.Mutex
	bodies [][]byte
	next   http.Handler
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(b))
		r.mu.Lock()
		r.bodies = append(r.bodies, b)
		r.mu.Unlock()
	}
	r.next.ServeHTTP(w, req)
}

func (r *recorder) contains(needle []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bodies {
		if bytes.Contains(b, needle) {
			return true
		}
	}
	return false
}

type client struct {
	id       domain.UserID
	keys     *store.KeyStore
	identity *identity.Service
	dir      *keydirectory.Service
	sessions *session.Model
	messages *message.Service
}

func newRelay(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	srv, err := devrelay.New(devrelay.Config{JWTSecret: secret}, nil)
	require.NoError(t, err)
	rec := &recorder{next: srv.Handler()}
	ts := httptest.NewServer(rec)
	t.Cleanup(ts.Close)
	return ts, rec
}

func newClient(t *testing.T, base string, id domain.UserID) *client {
	t.Helper()
	tok, err := devrelay.IssueToken(secret, id, time.Minute)
	require.NoError(t, err)
	tx := relay.NewHTTP(base, tok)

	ks := store.NewKeyStore(store.NewMemoryStore(nil))
	dir := keydirectory.New(tx, store.NewMemoryStore(nil), nil)
	sessions := session.New(id, tx, nil)
	return &client{
		id:       id,
		keys:     ks,
		identity: identity.New(ks, dir, nil),
		dir:      dir,
		sessions: sessions,
		messages: message.New(message.Config{
			Me:        id,
			Keys:      ks,
			Directory: dir,
			Sessions:  sessions,
			Transport: tx,
			Sent:      store.NewMemoryStore(nil),
		}),
	}
}

func (c *client) init(t *testing.T) {
	t.Helper()
	_, err := c.identity.Initialize(context.Background(), c.id)
	require.NoError(t, err)
}

func TestScenario_AliceToBob(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	alice, bob := newClient(t, ts.URL, "alice"), newClient(t, ts.URL, "bob")
	alice.init(t)
	bob.init(t)

	env, err := alice.messages.Send(ctx, "bob", "hello bob", "", nil)
	require.NoError(t, err)
	assert.Equal(t, session.DeriveChatID("alice", "bob"), env.ChatID)
	assert.Equal(t, domain.MessageText, env.MessageType)

	page, shown, err := bob.messages.Open(ctx, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "hello bob", shown[0].Plaintext)
	assert.False(t, shown[0].Outgoing)
	assert.False(t, shown[0].Undecryptable)

	// Opening marked the chat read.
	assert.Equal(t, 0, bob.sessions.UnreadCount(env.ChatID))
	n, err := bob.sessions.TotalUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// The sender sees its own text from the local memo.
	_, mine, err := alice.messages.Open(ctx, "bob", 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Outgoing)
	assert.Equal(t, "hello bob", mine[0].Plaintext)
}

func TestScenario_ThreeMessagesUnread(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	alice, bob := newClient(t, ts.URL, "alice"), newClient(t, ts.URL, "bob")
	alice.init(t)
	bob.init(t)

	for _, m := range []string{"one", "two", "three"} {
		_, err := alice.messages.Send(ctx, "bob", m, domain.MessageText, nil)
		require.NoError(t, err)
	}
	chat := session.DeriveChatID("bob", "alice")

	_, err := bob.sessions.LoadMessages(ctx, chat, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, bob.sessions.UnreadCount(chat))

	_, err = bob.sessions.MarkRead(ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, 0, bob.sessions.UnreadCount(chat))

	_, err = alice.sessions.LoadMessages(ctx, chat, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, alice.sessions.UnreadCount(chat))
}

func TestSend_MissingKeys(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	alice, bob := newClient(t, ts.URL, "alice"), newClient(t, ts.URL, "bob")

	_, err := alice.messages.Send(ctx, "bob", "hi", "", nil)
	var absent *domain.KeyAbsentError
	require.ErrorAs(t, err, &absent)
	assert.False(t, absent.Peer)

	alice.init(t)
	_, err = alice.messages.Send(ctx, "bob", "hi", "", nil)
	require.ErrorAs(t, err, &absent)
	assert.True(t, absent.Peer)
	assert.Equal(t, domain.UserID("bob"), absent.UserID)

	bob.init(t)
	_, err = alice.messages.Send(ctx, "bob", "hi", "", nil)
	require.NoError(t, err)
}

func TestSend_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	alice := newClient(t, ts.URL, "alice")
	alice.init(t)

	_, err := alice.messages.Send(ctx, "bob", "   ", "", nil)
	assert.ErrorIs(t, err, message.ErrEmptyMessage)
	_, err = alice.messages.Send(ctx, "bob", "x", "video", nil)
	assert.Error(t, err)
	_, err = alice.messages.Send(ctx, "alice", "x", "", nil)
	assert.Error(t, err)
}

func TestPrivateKeyAndPlaintextNeverLeave(t *testing.T) {
	ctx := context.Background()
	ts, rec := newRelay(t)
	alice, bob := newClient(t, ts.URL, "alice"), newClient(t, ts.URL, "bob")
	alice.init(t)
	bob.init(t)

	const secretText = "privileged attorney-client note"
	_, err := alice.messages.Send(ctx, "bob", secretText, domain.MessageText, map[string]any{"fileName": "x.pdf"})
	require.NoError(t, err)
	_, _, err = bob.messages.Open(ctx, "alice", 0, 0)
	require.NoError(t, err)

	for _, c := range []*client{alice, bob} {
		priv, ok := c.keys.Retrieve(ctx, c.id)
		require.True(t, ok)
		assert.False(t, rec.contains(priv[:]), "raw private key of %s sent", c.id)
		assert.False(t, rec.contains([]byte(base64.StdEncoding.EncodeToString(priv[:]))),
			"encoded private key of %s sent", c.id)
	}
	assert.False(t, rec.contains([]byte(secretText)))
}

func TestDisplay_UndecryptableAndLegacy(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	alice, bob := newClient(t, ts.URL, "alice"), newClient(t, ts.URL, "bob")
	alice.init(t)
	bob.init(t)

	env, err := alice.messages.Send(ctx, "bob", "hello", "", nil)
	require.NoError(t, err)

	tampered := env
	tampered.Ciphertext = append([]byte(nil), env.Ciphertext...)
	tampered.Ciphertext[0] ^= 0xff
	legacy := domain.Envelope{ID: "old", SenderID: "alice", ReceiverID: "bob", Ciphertext: []byte("x")}

	shown := bob.messages.Display(ctx, []domain.Envelope{env, tampered, legacy})
	require.Len(t, shown, 3)
	assert.Equal(t, "hello", shown[0].Plaintext)
	assert.True(t, shown[1].Undecryptable)
	assert.Equal(t, domain.UndecryptablePlaceholder, shown[1].Plaintext)
	assert.True(t, shown[2].Undecryptable)
	assert.Contains(t, shown[2].Reason, "legacy")
}

func TestDisplay_SentFromAnotherDevice(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	alice, bob := newClient(t, ts.URL, "alice"), newClient(t, ts.URL, "bob")
	alice.init(t)
	bob.init(t)
	_, err := alice.messages.Send(ctx, "bob", "hello", "", nil)
	require.NoError(t, err)

	// A fresh client for alice has no memo of what was sent.
	other := newClient(t, ts.URL, "alice")
	_, shown, err := other.messages.Open(ctx, "bob", 0, 0)
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.True(t, shown[0].Outgoing)
	assert.True(t, shown[0].Undecryptable)
}

func TestRegeneratedKeyOrphansOldMessages(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	alice, bob := newClient(t, ts.URL, "alice"), newClient(t, ts.URL, "bob")
	alice.init(t)
	bob.init(t)

	_, err := alice.messages.Send(ctx, "bob", "before", "", nil)
	require.NoError(t, err)
	_, err = bob.identity.Regenerate(ctx, "bob")
	require.NoError(t, err)

	// Alice still holds bob's old key until she clears her cache.
	_, err = alice.messages.Send(ctx, "bob", "stale", "", nil)
	require.NoError(t, err)
	require.NoError(t, alice.dir.ClearCache(ctx))
	_, err = alice.messages.Send(ctx, "bob", "after", "", nil)
	require.NoError(t, err)

	_, shown, err := bob.messages.Open(ctx, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, shown, 3)
	assert.True(t, shown[0].Undecryptable)
	assert.True(t, shown[1].Undecryptable)
	assert.Equal(t, "after", shown[2].Plaintext)
}

func TestSendMany_PartialFailure(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	lawyer := newClient(t, ts.URL, "lawyer")
	bob, carol := newClient(t, ts.URL, "bob"), newClient(t, ts.URL, "carol")
	lawyer.init(t)
	bob.init(t)
	carol.init(t)

	results, err := lawyer.messages.SendMany(ctx,
		[]domain.UserID{"bob", "nokey", "carol", "bob", "", "lawyer"}, "hearing moved to friday", "", nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	byPeer := map[domain.UserID]domain.SendResult{}
	for _, r := range results {
		byPeer[r.Peer] = r
	}
	require.NoError(t, byPeer["bob"].Err)
	require.NoError(t, byPeer["carol"].Err)
	assert.ErrorIs(t, byPeer["nokey"].Err, domain.ErrKeyAbsent)
	assert.Error(t, byPeer["lawyer"].Err)
	assert.NotEqual(t, byPeer["bob"].Envelope.Nonce, byPeer["carol"].Envelope.Nonce)
	assert.Equal(t, session.DeriveChatID("lawyer", "carol"), byPeer["carol"].Envelope.ChatID)

	for _, c := range []*client{bob, carol} {
		_, shown, err := c.messages.Open(ctx, "lawyer", 10, 0)
		require.NoError(t, err)
		require.Len(t, shown, 1)
		assert.Equal(t, "hearing moved to friday", shown[0].Plaintext)
	}

	_, ok := lawyer.sessions.Session(session.DeriveChatID("lawyer", "bob"))
	assert.True(t, ok)
}

func TestSendMany_RejectsBeforeSending(t *testing.T) {
	ctx := context.Background()
	ts, _ := newRelay(t)
	alice := newClient(t, ts.URL, "alice")

	_, err := alice.messages.SendMany(ctx, []domain.UserID{"bob"}, "hi", "", nil)
	assert.ErrorIs(t, err, domain.ErrKeyAbsent)

	alice.init(t)
	_, err = alice.messages.SendMany(ctx, []domain.UserID{"bob"}, "  ", "", nil)
	assert.ErrorIs(t, err, message.ErrEmptyMessage)
	_, err = alice.messages.SendMany(ctx, []domain.UserID{"", ""}, "hi", "", nil)
	assert.Error(t, err)
}
