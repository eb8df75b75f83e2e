// Package message sends and opens end-to-end encrypted messages.
//
// Sending resolves the peer's public key, seals the plaintext under a fresh
// ephemeral key pair and posts the opaque envelope through the transport.
// Opening loads a page of a chat, decrypts every envelope addressed to the
// user and marks the chat read. An envelope that cannot be opened becomes a
// labelled placeholder and never fails the page.
package message
