package domain

import (
	interfaces "github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain/interfaces"
	types "github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID              = types.UserID
	ChatID              = types.ChatID
	MessageID           = types.MessageID
	Fingerprint         = types.Fingerprint
	PublicKey           = types.PublicKey
	PrivateKey          = types.PrivateKey
	KeyPair             = types.KeyPair
	StoredIdentity      = types.StoredIdentity
	PeerPublicKeyRecord = types.PeerPublicKeyRecord
	KeyStatus           = types.KeyStatus
	MessageType         = types.MessageType
	EnvelopeVariant     = types.EnvelopeVariant
	Envelope            = types.Envelope
	Sealed              = types.Sealed
	SendMessageRequest  = types.SendMessageRequest
	MessagePage         = types.MessagePage
	ChatSummary         = types.ChatSummary
	ChatSession         = types.ChatSession
	DisplayMessage      = types.DisplayMessage
	SendResult          = types.SendResult
)

// Constants re-exported from the types subpackage.
const (
	KeySize                  = types.KeySize
	MessageText              = types.MessageText
	MessageFile              = types.MessageFile
	MessageImage             = types.MessageImage
	VariantCurrent           = types.VariantCurrent
	VariantLegacy            = types.VariantLegacy
	LegacyEphemeralKeyMarker = types.LegacyEphemeralKeyMarker
	UndecryptablePlaceholder = types.UndecryptablePlaceholder
)

// ParsePublicKey decodes a base64 public key.
var ParsePublicKey = types.ParsePublicKey

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeyValueStore       = interfaces.KeyValueStore
	KeyStore            = interfaces.KeyStore
	KeyDirectory        = interfaces.KeyDirectory
	MessageTransport    = interfaces.MessageTransport
	IdentityService     = interfaces.IdentityService
	KeyDirectoryService = interfaces.KeyDirectoryService
	SessionService      = interfaces.SessionService
	MessageService      = interfaces.MessageService
)
