// Package crypto exposes the primitives of the messaging core.
//
// Contents
//
//   - Box key pair generation (GenerateKeyPair, PublicFromPrivate)
//   - Per-message ephemeral-key encryption (Encrypt) and its inverse
//     (Decrypt, DecryptBatch)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//
// # Notes
//
// Every envelope is sealed with a fresh ephemeral key pair and a fresh random
// nonce, so only the recipient can open it; the sender keeps no way to
// decrypt what it sent. The algorithm name is exported as Suite and shared by
// the generator and the cipher.
package crypto
