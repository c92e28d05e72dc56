package handlers

import (
	"net/http"

	"github.com/rs/cors"

	"gitlab.com/fleetops/whitelistd/internal/config"
)

var (
	corsHandler = cors.New(cors.Options{AllowedMethods: []string{http.MethodGet, http.MethodHead}})
)

// CorsHandler installs cross-origin request handling unless it is disabled
func CorsHandler(config *config.Config, handler http.Handler) http.Handler {
	if !config.General.DisableCrossOriginRequests {
		handler = corsHandler.Handler(handler)
	}
	return handler
}
