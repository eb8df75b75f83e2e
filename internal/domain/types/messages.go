package types

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// MessageType classifies the plaintext carried by an envelope.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageFile  MessageType = "file"
	MessageImage MessageType = "image"
)

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageFile, MessageImage:
		return true
	}
	return false
}

// LegacyEphemeralKeyMarker is written into the ephemeral key field of
// envelopes stored before per-message ephemeral keys existed.
const LegacyEphemeralKeyMarker = "LEGACY_MESSAGE_NO_EPHEMERAL_KEY"

// EnvelopeVariant distinguishes envelopes that can be opened from those that
// predate the ephemeral-key scheme.
type EnvelopeVariant int

const (
	VariantCurrent EnvelopeVariant = iota
	VariantLegacy
)

// String returns a short name for the variant.
func (v EnvelopeVariant) String() string {
	if v == VariantLegacy {
		return "legacy"
	}
	return "current"
}

// Envelope is the wire and storage record of one encrypted message. The
// store treats everything but IsRead as immutable opaque data.
type Envelope struct {
	ID                 MessageID      `json:"id"`
	ChatID             ChatID         `json:"chatId"`
	SenderID           UserID         `json:"senderId"`
	ReceiverID         UserID         `json:"receiverId"`
	Ciphertext         []byte         `json:"ciphertext"`
	Nonce              []byte         `json:"nonce"`
	EphemeralPublicKey []byte         `json:"ephemeralPublicKey,omitempty"`
	SenderPublicKeyRef []byte         `json:"senderPublicKey,omitempty"`
	MessageType        MessageType    `json:"messageType"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	IsRead             bool           `json:"isRead"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`

	// legacyMarker is set when the ephemeral key field held something other
	// than a base64 key, such as LegacyEphemeralKeyMarker.
	legacyMarker bool
}

// Variant reports whether the envelope carries an ephemeral key that a
// recipient can use, or is a legacy record that cannot be opened.
func (e Envelope) Variant() EnvelopeVariant {
	if e.legacyMarker || len(e.EphemeralPublicKey) == 0 {
		return VariantLegacy
	}
	if legacy, ok := e.Metadata["isLegacyMessage"].(bool); ok && legacy {
		return VariantLegacy
	}
	return VariantCurrent
}

// AddressedTo reports whether u is the receiver of the envelope.
func (e Envelope) AddressedTo(u UserID) bool { return e.ReceiverID == u }

// UnmarshalJSON decodes an envelope, tolerating legacy ephemeral key values
// that are not base64 so a single old record cannot break a whole page.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	type alias Envelope
	aux := struct {
		*alias
		EphemeralPublicKey *string `json:"ephemeralPublicKey,omitempty"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.EphemeralPublicKey = nil
	e.legacyMarker = false
	if aux.EphemeralPublicKey == nil || *aux.EphemeralPublicKey == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(*aux.EphemeralPublicKey)
	if err != nil || *aux.EphemeralPublicKey == LegacyEphemeralKeyMarker {
		e.legacyMarker = true
		return nil
	}
	e.EphemeralPublicKey = raw
	return nil
}

// Sealed is the output of encrypting one plaintext for one recipient.
type Sealed struct {
	Ciphertext         []byte
	Nonce              [24]byte
	EphemeralPublicKey PublicKey
	SenderPublicKeyRef PublicKey
}

// SendMessageRequest is the body posted to the message store.
type SendMessageRequest struct {
	ChatID             ChatID         `json:"chatId"`
	ReceiverID         UserID         `json:"receiverId"`
	Ciphertext         []byte         `json:"ciphertext"`
	Nonce              []byte         `json:"nonce"`
	EphemeralPublicKey []byte         `json:"ephemeralPublicKey"`
	MessageType        MessageType    `json:"messageType,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// MessagePage is one page of a chat, oldest first.
type MessagePage struct {
	Messages []Envelope `json:"messages"`
	Total    int        `json:"total"`
	HasMore  bool       `json:"hasMore"`
}

// ChatSummary is the per-chat line of a user's conversation list.
type ChatSummary struct {
	ChatID       ChatID   `json:"chatId"`
	LastMessage  Envelope `json:"lastMessage"`
	MessageCount int      `json:"messageCount"`
	UnreadCount  int      `json:"unreadCount"`
}

// UndecryptablePlaceholder is shown in place of a message that could not be
// opened.
const UndecryptablePlaceholder = "[Encrypted Message - Decryption Failed]"

// DisplayMessage is an envelope paired with what the UI should render.
type DisplayMessage struct {
	Envelope      Envelope `json:"envelope"`
	Plaintext     string   `json:"plaintext"`
	Outgoing      bool     `json:"outgoing"`
	Undecryptable bool     `json:"undecryptable"`
	Reason        string   `json:"reason,omitempty"`
}

// SendResult is the outcome of one recipient of a multi-recipient send.
// Exactly one of Envelope.ID and Err is set.
type SendResult struct {
	Peer     UserID
	Envelope Envelope
	Err      error
}
