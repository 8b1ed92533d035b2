// Command vaultsyncd serves a shared location over HTTP. It stores blobs on
// the local filesystem and never sees plaintext: clients encrypt and sign
// everything before it leaves their machine.
package main
