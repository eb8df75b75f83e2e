package devrelay_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/devrelay"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

const secret = "test-secret-0123456789"

type harness struct {
	t   *testing.T
	srv *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s, err := devrelay.New(devrelay.Config{JWTSecret: secret}, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv}
}

func (h *harness) call(user domain.UserID, method, path string, body any) (int, map[string]any) {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, r)
	require.NoError(h.t, err)
	if user != "" {
		tok, err := devrelay.IssueToken(secret, user, time.Minute)
		require.NoError(h.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func b64(n int, fill byte) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{fill}, n))
}

func (h *harness) publish(user domain.UserID) {
	h.t.Helper()
	code, _ := h.call(user, http.MethodPut, "/keys", map[string]any{"userId": user, "publicKey": b64(32, 7)})
	require.Equal(h.t, http.StatusOK, code)
}

func (h *harness) send(from, to domain.UserID, chat string) string {
	h.t.Helper()
	code, body := h.call(from, http.MethodPost, "/messages", map[string]any{
		"chatId":             chat,
		"receiverId":         to,
		"ciphertext":         b64(20, 1),
		"nonce":              b64(24, 2),
		"ephemeralPublicKey": b64(32, 3),
	})
	require.Equal(h.t, http.StatusCreated, code, body)
	return body["data"].(map[string]any)["id"].(string)
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)
	code, _ := h.call("", http.MethodGet, "/keys/u1", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	req, _ := http.NewRequest(http.MethodGet, h.srv.URL+"/keys/u1", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := devrelay.IssueToken("another-secret-0123456789", "u1", time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+other)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNew_RejectsWeakSecret(t *testing.T) {
	_, err := devrelay.New(devrelay.Config{JWTSecret: "short"}, nil)
	assert.ErrorIs(t, err, devrelay.ErrWeakSecret)
	_, err = devrelay.IssueToken("short", "u1", 0)
	assert.ErrorIs(t, err, devrelay.ErrWeakSecret)
}

func TestKeys(t *testing.T) {
	h := newHarness(t)
	h.publish("u1")

	code, rec := h.call("u2", http.MethodGet, "/keys/u1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, b64(32, 7), rec["publicKey"])

	code, _ = h.call("u2", http.MethodGet, "/keys/nobody", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body := h.call("u2", http.MethodPost, "/keys/batch", map[string]any{"userIds": []string{"u1", "nobody"}})
	require.Equal(t, http.StatusOK, code)
	keys := body["keys"].(map[string]any)
	assert.Len(t, keys, 1)
	assert.Contains(t, keys, "u1")

	code, _ = h.call("u2", http.MethodPut, "/keys", map[string]any{"userId": "u1", "publicKey": b64(32, 9)})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.call("u2", http.MethodDelete, "/keys/u1", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = h.call("u1", http.MethodDelete, "/keys/u1", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.call("u1", http.MethodDelete, "/keys/u1", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSendMessage_Validation(t *testing.T) {
	h := newHarness(t)
	msg := map[string]any{
		"chatId": "chat_u1_u2", "receiverId": "u2",
		"ciphertext": b64(20, 1), "nonce": b64(24, 2), "ephemeralPublicKey": b64(32, 3),
	}

	code, body := h.call("u1", http.MethodPost, "/messages", msg)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "Sender public key not found")

	h.publish("u1")
	code, _ = h.call("u1", http.MethodPost, "/messages", map[string]any{"chatId": "chat_u1_u2", "receiverId": "u2"})
	assert.Equal(t, http.StatusBadRequest, code)

	self := map[string]any{}
	for k, v := range msg {
		self[k] = v
	}
	self["receiverId"] = "u1"
	code, _ = h.call("u1", http.MethodPost, "/messages", self)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = h.call("u1", http.MethodPost, "/messages", msg)
	require.Equal(t, http.StatusCreated, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "u1", data["senderId"])
	assert.Equal(t, b64(32, 7), data["senderPublicKey"])
	assert.Equal(t, "text", data["messageType"])
	assert.Equal(t, false, data["isRead"])
}

func TestMessages_PaginationAndReadState(t *testing.T) {
	h := newHarness(t)
	h.publish("u1")
	h.publish("u2")
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, h.send("u1", "u2", "chat_u1_u2"))
	}

	code, body := h.call("u2", http.MethodGet, "/messages/chat_u1_u2?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, code)
	page := body["data"].(map[string]any)
	msgs := page["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, ids[2], msgs[0].(map[string]any)["id"])
	assert.Equal(t, ids[3], msgs[1].(map[string]any)["id"])
	assert.EqualValues(t, 5, page["total"])
	assert.Equal(t, true, page["hasMore"])

	_, body = h.call("u3", http.MethodGet, "/messages/chat_u1_u2", nil)
	assert.Empty(t, body["data"].(map[string]any)["messages"])

	_, body = h.call("u2", http.MethodGet, "/messages/unread/count", nil)
	assert.EqualValues(t, 5, body["data"].(map[string]any)["unreadCount"])

	_, body = h.call("u2", http.MethodGet, "/messages/chats", nil)
	chats := body["data"].(map[string]any)["chats"].([]any)
	require.Len(t, chats, 1)
	chat := chats[0].(map[string]any)
	assert.Equal(t, "chat_u1_u2", chat["chatId"])
	assert.EqualValues(t, 5, chat["messageCount"])
	assert.EqualValues(t, 5, chat["unreadCount"])
	assert.Equal(t, ids[4], chat["lastMessage"].(map[string]any)["id"])

	// Only the receiver's messages change.
	_, body = h.call("u1", http.MethodPut, "/messages/chat_u1_u2/read", nil)
	assert.EqualValues(t, 0, body["data"].(map[string]any)["updatedCount"])
	_, body = h.call("u2", http.MethodPut, "/messages/chat_u1_u2/read", nil)
	assert.EqualValues(t, 5, body["data"].(map[string]any)["updatedCount"])
	_, body = h.call("u2", http.MethodGet, "/messages/unread/count", nil)
	assert.EqualValues(t, 0, body["data"].(map[string]any)["unreadCount"])
}

func TestDeleteMessage(t *testing.T) {
	h := newHarness(t)
	h.publish("u1")
	id := h.send("u1", "u2", "chat_u1_u2")

	code, _ := h.call("u2", http.MethodDelete, "/messages/"+id, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = h.call("u1", http.MethodDelete, "/messages/"+id, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.call("u1", http.MethodDelete, "/messages/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.publish("u1")

	resp, err := http.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(b), "devrelay_http_requests_total"))
	assert.True(t, strings.Contains(string(b), "devrelay_keys_published 1"))
}

func TestRequestBinding(t *testing.T) {
	h := newHarness(t)
	h.publish("u1")

	code, body := h.call("u1", http.MethodPut, "/keys", map[string]any{"userId": "u1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body["error"])

	ids := make([]string, 101)
	for i := range ids {
		ids[i] = fmt.Sprintf("user%d", i)
	}
	code, _ = h.call("u1", http.MethodPost, "/keys/batch", map[string]any{"userIds": ids})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = h.call("u1", http.MethodPost, "/keys/batch", map[string]any{"userIds": ids[:100]})
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.call("u1", http.MethodPost, "/keys/batch", map[string]any{"userIds": []string{"u1", ""}})
	assert.Equal(t, http.StatusBadRequest, code)

	msg := map[string]any{
		"chatId": "chat_u1_u2", "receiverId": "u2",
		"ciphertext": b64(20, 1), "nonce": b64(24, 2), "ephemeralPublicKey": b64(32, 3),
		"messageType": "video",
	}
	code, _ = h.call("u1", http.MethodPost, "/messages", msg)
	assert.Equal(t, http.StatusBadRequest, code)
	msg["messageType"] = "image"
	code, _ = h.call("u1", http.MethodPost, "/messages", msg)
	assert.Equal(t, http.StatusCreated, code)

	code, _ = h.call("u1", http.MethodGet, "/messages/chat_u1_u2?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = h.call("u1", http.MethodGet, "/messages/chat_u1_u2?offset=x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	code, body := h.call("u1", http.MethodGet, "/nope/keys/u1", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "ROUTE_NOT_FOUND", body["error"])

	code, body = h.call("u1", http.MethodGet, "/messages/chat_u1_u2/other", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "ROUTE_NOT_FOUND", body["error"])
}
