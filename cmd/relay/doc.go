// Package main runs the in-memory HTTP relay used by lawmate during
// development and tests. It stores published public keys and opaque
// message envelopes; it never sees plaintext or private keys.
//
// HTTP API (all routes except /health and /metrics need a bearer token)
//
//	PUT  /keys                     publish the caller's public key
//	POST /keys/batch               fetch several public keys
//	GET  /keys/{userId}            fetch one public key
//	DELETE /keys/{userId}          remove the caller's public key
//
//	POST /messages                 store an envelope
//	GET  /messages/chats           list the caller's chats
//	GET  /messages/unread/count    unread count across chats
//	GET  /messages/{chatId}        page of a chat (?limit=&offset=)
//	PUT  /messages/{chatId}/read   mark a chat read
//	DELETE /messages/{messageId}   delete an envelope the caller sent
//
// Configuration
//
//   - RELAY_ADDR        listen address (default :8080)
//   - RELAY_JWT_SECRET  HS256 secret, at least 16 bytes (required)
//   - LOG_LEVEL, LOG_FORMAT
//
// All state is held in memory and lost on process exit.
package main
