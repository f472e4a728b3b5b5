package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// bearerTransport injects the session token into every outgoing request and
// watches responses for a rejected token, clearing the session so stale
// credentials do not linger.
type bearerTransport struct {
	session *Session
	base    http.RoundTripper
}

func newBearerTransport(session *Session, base http.RoundTripper) *bearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &bearerTransport{session: session, base: base}
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.session.Token(); token != "" && req.Header.Get("Authorization") == "" {
		// Clone: RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusForbidden && t.session.IsAuthenticated() && isTokenRejection(resp) {
		_ = t.session.Clear()
	}
	return resp, nil
}

// isTokenRejection distinguishes the two kinds of 403 the server sends: a
// rejected token carries an `error` detail in the body, a role denial of a
// still-valid token does not. Only the former invalidates the session.
// The body is re-buffered so callers can still read it.
func isTokenRejection(resp *http.Response) bool {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return false
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return false
	}
	return body.Error != ""
}
