// Package remote implements the blob backend contract over HTTP: a client
// that talks to a vaultsyncd server, and the matching handler the server
// mounts. Both sides move opaque bytes only; encryption and signing happen
// above this layer.
package remote
