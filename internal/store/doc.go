// Package store provides versioned key-value storage over pluggable byte-blob
// backends, plus the passphrase-locked local key store and the encrypt-then-
// sign wrapper used for data shared between participants.
//
// A Replicated store owns its local copy exclusively; importing objects from
// a peer is the sync engine's job alone.
package store
