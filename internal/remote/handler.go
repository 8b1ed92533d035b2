package remote

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	golog "github.com/ipfs/go-log/v2"

	"vaultsync/internal/domain"
)

var log = golog.Logger("remote")

// NewHandler serves the blob backend contract over b. Mounted by vaultsyncd.
func NewHandler(b domain.Backend) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/blob/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/blob/")
		if path == "" || strings.Contains(path, "..") {
			http.Error(w, "bad blob path", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet:
			data, ok, err := b.Read(path)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(data)
		case http.MethodPut:
			defer r.Body.Close()
			data, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := b.Write(path, data); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			log.Debugf("stored %s (%d bytes)", path, len(data))
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/blobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		paths, err := b.List(r.URL.Query().Get("prefix"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if paths == nil {
			paths = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(paths)
	})

	return mux
}
