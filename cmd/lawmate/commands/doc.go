// Package commands defines the lawmate CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init         Create and publish the local key pair (kept if present)
//   - regenerate   Replace the key pair; older messages become unreadable
//   - revoke       Withdraw the public key and erase the private key
//   - status       Show whether keys exist and their fingerprint
//   - fingerprint  Print the public key fingerprint and base64 key
//   - peer         Fetch peers' fingerprints, optionally checking an expected key
//   - send         Encrypt and send a message (--to for several recipients)
//   - open         Show a decrypted page of a chat and mark it read
//   - chats        List chats with unread counts
//   - read         Mark a chat read
//   - delete       Delete one of your messages
//   - unread       Print the unread message count
//   - token        Issue a dev relay token (needs RELAY_JWT_SECRET)
//
// # Implementation
//
// The root command loads app.Config from the environment, applies flag
// overrides and builds an app.Wire before any subcommand runs, so handlers
// share one HTTP client, key store and session model.
package commands
