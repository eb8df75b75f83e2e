// Package relay provides the HTTP client for the key directory and the
// message store.
//
// The message store only ever sees opaque envelopes: ciphertext, nonce,
// ephemeral public key and routing fields. This package does no
// cryptography; it moves bytes and maps HTTP outcomes onto the domain error
// taxonomy.
//
// Supported operations include:
//   - Publishing, fetching (one or many) and deleting public keys.
//   - Sending an envelope and listing a chat page, oldest first.
//   - Listing chats, marking a chat read, deleting a message and counting
//     unread messages.
//
// Every request carries "Authorization: Bearer <token>" and a context for
// cancellation and deadlines. Network failures, timeouts, 429 and 5xx
// responses are returned as retryable *domain.TransportError values.
package relay
