package main

import (
	"flag"
	"log"
	"net/http"

	"vaultsync/internal/remote"
	"vaultsync/internal/store"
)

func main() {
	addr := flag.String("addr", ":8750", "listen address")
	dir := flag.String("dir", "vaultsyncd-data", "directory holding the blobs")
	flag.Parse()

	h := remote.NewHandler(store.NewFS(*dir))
	log.Printf("vaultsyncd listening on %s, data in %s", *addr, *dir)
	log.Fatal(http.ListenAndServe(*addr, h))
}
