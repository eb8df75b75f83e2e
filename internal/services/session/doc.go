// Package session tracks the conversations of the local user.
//
// A chat id is derived from the two participant ids and is the same whichever
// side computes it. Sessions are a client-side view rebuilt from the message
// store; they are never persisted authoritatively.
package session
