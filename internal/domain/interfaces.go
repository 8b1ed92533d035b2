package domain

// Backend is the byte-blob contract every replicated-store location builds
// on. Implementations exist for the local filesystem, a single-file SQLite
// database and a remote HTTP blob server; all three behave identically as
// seen from here.
type Backend interface {
	// Read returns the blob at path, or ok=false if it is absent.
	Read(path string) (data []byte, ok bool, err error)
	// Write stores data at path, overwriting any previous blob.
	Write(path string, data []byte) error
	// List returns every stored path that begins with prefix.
	List(prefix string) ([]string, error)
}

// KeyResolver looks up the signing public key for a user ID when verifying
// shared data. It reports ok=false for unknown writers; blocked writers
// still resolve so their old signatures stay verifiable.
type KeyResolver func(UserID) (SigningPublicKey, bool)
