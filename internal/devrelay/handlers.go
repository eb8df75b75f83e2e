package devrelay

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

type publishKeyRequest struct {
	UserID    domain.UserID    `json:"userId"`
	PublicKey domain.PublicKey `json:"publicKey" binding:"required"`
}

type batchKeysRequest struct {
	UserIDs []domain.UserID `json:"userIds" binding:"required,max=100,dive,required"`
}

type sendMessageRequest struct {
	ChatID             domain.ChatID      `json:"chatId" binding:"required"`
	ReceiverID         domain.UserID      `json:"receiverId" binding:"required"`
	Ciphertext         []byte             `json:"ciphertext" binding:"required,min=1"`
	Nonce              []byte             `json:"nonce" binding:"required,min=1"`
	EphemeralPublicKey []byte             `json:"ephemeralPublicKey" binding:"required,min=1"`
	MessageType        domain.MessageType `json:"messageType" binding:"omitempty,oneof=text file image"`
	Metadata           map[string]any     `json:"metadata"`
}

type pageQuery struct {
	Limit  int `form:"limit,default=50" binding:"min=0"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

func (s *Server) publishKey(c *gin.Context) {
	var req publishKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Public key is required")
		return
	}
	me := currentUser(c)
	if req.UserID == "" {
		req.UserID = me
	}
	if req.UserID != me {
		fail(c, http.StatusForbidden, "FORBIDDEN", "Cannot publish a key for another user")
		return
	}
	rec := s.mem.putKey(me, req.PublicKey)
	s.metrics.keysPublished.Set(float64(s.mem.keyCount()))
	s.log.Info("public key published", zap.String("user_id", me.String()))
	c.JSON(http.StatusOK, rec)
}

func (s *Server) fetchKey(c *gin.Context) {
	rec, ok := s.mem.key(domain.UserID(c.Param("userId")))
	if !ok {
		fail(c, http.StatusNotFound, "NOT_FOUND", "Public key not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) fetchKeys(c *gin.Context) {
	var req batchKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"userIds must be a list of at most 100 ids")
		return
	}
	keys := make(map[domain.UserID]domain.PeerPublicKeyRecord, len(req.UserIDs))
	for _, id := range req.UserIDs {
		if rec, ok := s.mem.key(id); ok {
			keys[id] = rec
		}
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (s *Server) deleteKey(c *gin.Context) {
	target := domain.UserID(c.Param("userId"))
	if target != currentUser(c) {
		fail(c, http.StatusForbidden, "FORBIDDEN", "Cannot delete another user's key")
		return
	}
	if !s.mem.deleteKey(target) {
		fail(c, http.StatusNotFound, "NOT_FOUND", "Public key not found")
		return
	}
	s.metrics.keysPublished.Set(float64(s.mem.keyCount()))
	c.JSON(http.StatusOK, gin.H{"message": "Public key deleted successfully"})
}

func (s *Server) sendMessage(c *gin.Context) {
	var body sendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Required: chatId, receiverId, ciphertext, nonce, ephemeralPublicKey; messageType is text, file or image")
		return
	}
	req := domain.SendMessageRequest(body)
	me := currentUser(c)
	if req.ReceiverID == me {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Sender and receiver cannot be the same")
		return
	}
	env, err := s.mem.addMessage(me, req)
	if err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Sender public key not found. Please generate crypto keys first.")
		return
	}
	s.metrics.messagesStored.Set(float64(s.mem.messageCount()))
	ok(c, http.StatusCreated, "Message sent successfully", env)
}

func (s *Server) getMessages(c *gin.Context) {
	if c.Param("chatId") == "chats" {
		s.listChats(c)
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit and offset must be non-negative integers")
		return
	}
	page := s.mem.page(currentUser(c), domain.ChatID(c.Param("chatId")), q.Limit, q.Offset)
	ok(c, http.StatusOK, "Messages retrieved successfully", page)
}

func (s *Server) getMessagesAction(c *gin.Context) {
	if c.Param("chatId") == "unread" && c.Param("action") == "count" {
		ok(c, http.StatusOK, "Unread count retrieved successfully",
			gin.H{"unreadCount": s.mem.unread(currentUser(c))})
		return
	}
	notFoundRoute(c)
}

func (s *Server) listChats(c *gin.Context) {
	ok(c, http.StatusOK, "Chats retrieved successfully", gin.H{"chats": s.mem.chats(currentUser(c))})
}

func (s *Server) markRead(c *gin.Context) {
	n := s.mem.markRead(currentUser(c), domain.ChatID(c.Param("chatId")))
	ok(c, http.StatusOK, "Messages marked as read", gin.H{"updatedCount": n})
}

func (s *Server) deleteMessage(c *gin.Context) {
	err := s.mem.deleteMessage(currentUser(c), domain.MessageID(c.Param("chatId")))
	switch {
	case errors.Is(err, errNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND", "Message not found")
		return
	case errors.Is(err, errForbidden):
		fail(c, http.StatusForbidden, "FORBIDDEN", "You can only delete your own messages")
		return
	}
	s.metrics.messagesStored.Set(float64(s.mem.messageCount()))
	ok(c, http.StatusOK, "Message deleted successfully", nil)
}

func notFoundRoute(c *gin.Context) {
	fail(c, http.StatusNotFound, "ROUTE_NOT_FOUND", "Route not found")
}
