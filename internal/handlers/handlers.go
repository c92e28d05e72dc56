package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/host"
	"gitlab.com/fleetops/whitelistd/internal/httperrors"
	"gitlab.com/fleetops/whitelistd/internal/logging"
	"gitlab.com/fleetops/whitelistd/internal/source"
	"gitlab.com/fleetops/whitelistd/internal/subject"
	"gitlab.com/fleetops/whitelistd/whitelist"
)

// Handlers take care of handling specific requests
type Handlers struct {
	source  source.Source
	checker *whitelist.Checker
}

// New when provided the arguments defined herein, returns a pointer to an
// Handlers that is used to handle requests.
func New(cfg *config.Config, src source.Source) *Handlers {
	checker := whitelist.NewChecker(src,
		whitelist.WithDefaultBag(cfg.Store.DefaultBag),
		whitelist.WithDefaultAttribute(cfg.Store.DefaultAttribute),
	)

	return &Handlers{
		source:  src,
		checker: checker,
	}
}

// Router builds the whitelist API routes
func (h *Handlers) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/v1/whitelists/{whitelist}/member", h.Member).Methods(http.MethodGet, http.MethodHead)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httperrors.Serve404(w)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httperrors.Serve405(w)
	})

	return router
}

type memberResponse struct {
	Whitelist string `json:"whitelist"`
	Host      string `json:"host"`
	Member    bool   `json:"member"`
	MatchedBy string `json:"matched_by"`
}

// Member answers whether the host named in the query belongs to the
// whitelist named in the path
func (h *Handlers) Member(w http.ResponseWriter, r *http.Request) {
	whitelistID := mux.Vars(r)["whitelist"]

	fqdn := host.FromString(r.URL.Query().Get("host"))
	if fqdn == "" {
		httperrors.Serve400(w)
		return
	}

	var opts []whitelist.CheckOption
	if bag := r.URL.Query().Get("bag"); bag != "" {
		opts = append(opts, whitelist.WithBag(bag))
	}
	if attribute := r.URL.Query().Get("attribute"); attribute != "" {
		opts = append(opts, whitelist.WithAttribute(attribute))
	}

	result := h.checker.Check(r.Context(), whitelistID, subject.New(fqdn, h.source), opts...)

	response := memberResponse{
		Whitelist: whitelistID,
		Host:      fqdn,
		Member:    result.Member,
		MatchedBy: string(result.MatchedBy),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogRequest(r).WithError(err).Error("failed to encode membership response")
	}
}
