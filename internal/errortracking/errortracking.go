// Package errortracking wraps labkit capture helpers so that other
// internal packages do not import labkit/errortracking directly.
package errortracking

import (
	"net/http"

	"gitlab.com/gitlab-org/labkit/errortracking"
)

// CaptureOption alias to keep labkit out of caller import lists
type CaptureOption = errortracking.CaptureOption

// WithField attaches a custom key/value pair to a captured error
func WithField(key, value string) CaptureOption {
	return errortracking.WithField(key, value)
}

// CaptureErrWithReqAndStackTrace reports err with the request, its context
// and a stack trace attached, plus any additional fields
func CaptureErrWithReqAndStackTrace(err error, r *http.Request, fields ...CaptureOption) {
	opts := append(
		fields,
		errortracking.WithContext(r.Context()),
		errortracking.WithRequest(r),
		errortracking.WithStackTrace(),
	)

	errortracking.Capture(err, opts...)
}

// CaptureErrWithStackTrace reports err with a stack trace attached, plus any
// additional fields
func CaptureErrWithStackTrace(err error, fields ...CaptureOption) {
	opts := append(
		fields,
		errortracking.WithStackTrace(),
	)

	errortracking.Capture(err, opts...)
}
