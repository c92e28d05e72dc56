package storestub

import (
	"net/http/httptest"

	"github.com/gorilla/mux"
)

// NewUnstartedServer builds a stub of the inventory API serving the
// predefined responses plus whatever the options add. Callers start it with
// Start or StartTLS and must Close it.
func NewUnstartedServer(opts ...Option) *httptest.Server {
	conf := &config{
		bags:  defaultBags(),
		nodes: defaultNodes(),
	}

	for _, so := range opts {
		so(conf)
	}

	if conf.bagHandler == nil {
		conf.bagHandler = defaultBagHandler(conf)
	}

	if conf.statusHandler == nil {
		conf.statusHandler = defaultStatusHandler(conf)
	}

	router := mux.NewRouter()

	router.HandleFunc("/api/v1/data/{bag}/{item}", conf.bagHandler)
	router.HandleFunc("/api/v1/nodes/{fqdn}", defaultNodeHandler(conf))
	router.HandleFunc("/api/v1/status", conf.statusHandler)

	s := httptest.NewUnstartedServer(router)
	s.TLS = conf.tlsConfig

	return s
}
