package httperrors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// creates a new implementation of http.ResponseWriter that allows the
// casting of values in order to aid testing efforts.
type testResponseWriter struct {
	status  int
	content string
	http.ResponseWriter
}

func newTestResponseWriter(w http.ResponseWriter) *testResponseWriter {
	return &testResponseWriter{0, "", w}
}

func (w *testResponseWriter) Status() int {
	return w.status
}

func (w *testResponseWriter) Content() string {
	return w.content
}

func (w *testResponseWriter) Header() http.Header {
	return w.ResponseWriter.Header()
}

func (w *testResponseWriter) Write(data []byte) (int, error) {
	w.content = string(data)
	return w.ResponseWriter.Write(data)
}

func (w *testResponseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

var testingContent = content{
	status:  http.StatusTeapot,
	code:    "testing",
	message: "testing content",
}

func TestServeErrorJSON(t *testing.T) {
	w := newTestResponseWriter(httptest.NewRecorder())
	serveErrorJSON(w, testingContent)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, testingContent.status, w.Status())
	require.JSONEq(t, `{"error":"testing","message":"testing content"}`, w.Content())
}

func TestServeContent(t *testing.T) {
	tests := map[string]struct {
		serve  func(http.ResponseWriter)
		expect content
	}{
		"bad_request":        {Serve400, content400},
		"not_found":          {Serve404, content404},
		"method_not_allowed": {Serve405, content405},
		"uri_too_long":       {Serve414, content414},
		"too_many_requests":  {Serve429, content429},
		"internal_error":     {Serve500, content500},
		"bad_gateway":        {Serve502, content502},
		"unavailable":        {Serve503, content503},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestResponseWriter(httptest.NewRecorder())
			tc.serve(w)
			require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			require.Equal(t, tc.expect.status, w.Status())
			require.Contains(t, w.Content(), tc.expect.code)
			require.Contains(t, w.Content(), tc.expect.message)
		})
	}
}
