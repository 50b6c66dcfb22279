package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/mytheresa/phone-catalog/app/api"
	"github.com/mytheresa/phone-catalog/app/assets"
)

// Module mounts a group of endpoints on the mux.
type Module interface {
	Register(mux *http.ServeMux)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter builds the service handler: the modules, the public image route and
// the health check, wrapped in request logging and panic recovery.
func NewRouter(store assets.Store, db Pinger, logger *slog.Logger, modules ...Module) http.Handler {
	mux := http.NewServeMux()

	for _, m := range modules {
		m.Register(mux)
	}

	mux.HandleFunc("GET "+assets.PublicPrefix+"{name}", serveImage(store, logger))
	mux.HandleFunc("GET /healthz", health(db, logger))

	var handler http.Handler = mux
	handler = Recover(logger)(handler)
	handler = Logger(logger)(handler)
	return handler
}

func serveImage(store assets.Store, logger *slog.Logger) http.HandlerFunc {
	logger = logger.With("handler", "images")

	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		blob, err := store.Open(r.Context(), name)
		if err != nil {
			if errors.Is(err, assets.ErrInvalidReference) {
				err = assets.ErrNotFound
			}
			api.Respond(w, logger, err)
			return
		}
		defer blob.Close()

		if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		if _, err := io.Copy(w, blob); err != nil {
			logger.Warn("image stream interrupted", "name", name, "error", err)
		}
	}
}

func health(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			api.RespondError(w, logger, http.StatusServiceUnavailable, err)
			return
		}
		api.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
