package healthcheck

import (
	"net/http"

	"gitlab.com/fleetops/whitelistd/internal/httperrors"
)

type readiness interface {
	IsReady() bool
}

// NewMiddleware is serving the application status check. The check reports
// failure until the whitelist source can answer membership queries.
func NewMiddleware(handler http.Handler, src readiness, statusPath string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != statusPath {
			handler.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Cache-Control", "no-store")

		if !src.IsReady() {
			httperrors.Serve503(w)
			return
		}

		w.Write([]byte("success\n"))
	})
}
