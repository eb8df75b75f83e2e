package types

// UserID identifies an authenticated marketplace user (client or lawyer).
type UserID string

// String returns the string form of the user id.
func (u UserID) String() string { return string(u) }

// ChatID identifies a two-party conversation. It is derived from the two
// participant ids and never chosen by a client.
type ChatID string

// String returns the string form of the chat id.
func (id ChatID) String() string { return string(id) }

// MessageID is the store-assigned identifier of a single envelope.
type MessageID string

// String returns the string form of the message id.
func (id MessageID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
