// Package crypto implements the primitive operations the registry and the
// registration protocol build on: key pair generation, hybrid multi-recipient
// encryption, Ed25519 signing and password-derived local keys.
//
// The package is stateless; it holds no key material between calls.
package crypto
