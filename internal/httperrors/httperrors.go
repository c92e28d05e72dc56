package httperrors

import (
	"encoding/json"
	"net/http"

	"gitlab.com/fleetops/whitelistd/internal/errortracking"
	"gitlab.com/fleetops/whitelistd/internal/logging"
)

type content struct {
	status  int
	code    string
	message string
}

var (
	content400 = content{
		http.StatusBadRequest,
		"bad_request",
		"The request is missing a required parameter or a parameter is invalid.",
	}
	content404 = content{
		http.StatusNotFound,
		"not_found",
		"The requested resource could not be found.",
	}
	content405 = content{
		http.StatusMethodNotAllowed,
		"method_not_allowed",
		"The requested method is not allowed for this resource.",
	}
	content414 = content{
		http.StatusRequestURITooLong,
		"uri_too_long",
		"The URI provided was too long for the server to process.",
	}
	content429 = content{
		http.StatusTooManyRequests,
		"too_many_requests",
		"This endpoint is being rate limited, try again later.",
	}
	content500 = content{
		http.StatusInternalServerError,
		"internal_error",
		"Something went wrong on our end.",
	}
	content502 = content{
		http.StatusBadGateway,
		"bad_gateway",
		"The inventory store could not be reached.",
	}
	content503 = content{
		http.StatusServiceUnavailable,
		"service_unavailable",
		"The service is not ready to handle requests yet.",
	}
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func serveErrorJSON(w http.ResponseWriter, c content) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(c.status)

	// nothing sensible left to do if the encoder fails, headers are gone
	json.NewEncoder(w).Encode(errorResponse{Error: c.code, Message: c.message})
}

// Serve400 returns a 400 JSON error response to the http.ResponseWriter
func Serve400(w http.ResponseWriter) {
	serveErrorJSON(w, content400)
}

// Serve404 returns a 404 JSON error response to the http.ResponseWriter
func Serve404(w http.ResponseWriter) {
	serveErrorJSON(w, content404)
}

// Serve405 returns a 405 JSON error response to the http.ResponseWriter
func Serve405(w http.ResponseWriter) {
	serveErrorJSON(w, content405)
}

// Serve414 returns a 414 JSON error response to the http.ResponseWriter
func Serve414(w http.ResponseWriter) {
	serveErrorJSON(w, content414)
}

// Serve429 returns a 429 JSON error response to the http.ResponseWriter
func Serve429(w http.ResponseWriter) {
	serveErrorJSON(w, content429)
}

// Serve500 returns a 500 JSON error response to the http.ResponseWriter
func Serve500(w http.ResponseWriter) {
	serveErrorJSON(w, content500)
}

// Serve500WithRequest logs the error, reports it to error tracking and
// returns a 500 JSON error response to the http.ResponseWriter
func Serve500WithRequest(w http.ResponseWriter, r *http.Request, reason string, err error) {
	logging.LogRequest(r).WithError(err).Error(reason)
	errortracking.CaptureErrWithReqAndStackTrace(err, r)
	serveErrorJSON(w, content500)
}

// Serve502 returns a 502 JSON error response to the http.ResponseWriter
func Serve502(w http.ResponseWriter) {
	serveErrorJSON(w, content502)
}

// Serve503 returns a 503 JSON error response to the http.ResponseWriter
func Serve503(w http.ResponseWriter) {
	serveErrorJSON(w, content503)
}
