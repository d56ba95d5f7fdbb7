package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"healthcare-storefront/internal/domain/ports/adapter"
)

var _ http.RoundTripper = (*Interceptor)(nil)

// Interceptor is an http.RoundTripper that answers /api/* requests from the
// simulator instead of the network, the way the storefront patches fetch.
// Non-API requests fall through to the base transport untouched.
type Interceptor struct {
	backend adapter.PaymentBackend
	base    http.RoundTripper
}

func NewInterceptor(backend adapter.PaymentBackend, base http.RoundTripper) *Interceptor {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Interceptor{backend: backend, base: base}
}

// Client returns an *http.Client whose transport routes through the
// interceptor.
func (i *Interceptor) Client() *http.Client {
	return &http.Client{Transport: i}
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.HasPrefix(req.URL.Path, "/api/") {
		return i.base.RoundTrip(req)
	}

	var payload []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		payload = b
	}

	body, err := i.backend.SimulateRequest(req.Context(), req.URL.Path, payload)
	if err != nil {
		errBody, _ := json.Marshal(map[string]any{
			"error":   err.Error(),
			"success": false,
		})
		return jsonResponse(req, http.StatusBadRequest, "Bad Request", errBody), nil
	}
	return jsonResponse(req, http.StatusOK, "OK", body), nil
}

func jsonResponse(req *http.Request, code int, status string, body []byte) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode:    code,
		Status:        status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
