package httpkit

import (
	"net/http"
	"strings"

	pnet "paygate/internal/platform/net"
)

// Payer returns the account whose proof unlocked this request
// ok is false off Paid routes and when a bearer token was presented instead of a proof
func Payer(r *http.Request) (payer string, ok bool) {
	p := pnet.Payer(r.Context())
	return p, p != ""
}

// Authorization splits the Authorization header into scheme and credential
// the scheme is returned lower cased; ok is false when either part is missing
func Authorization(r *http.Request) (scheme, credential string, ok bool) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	if s == "" {
		return "", "", false
	}
	scheme, credential, found := strings.Cut(s, " ")
	if !found {
		return "", "", false
	}
	credential = strings.TrimSpace(credential)
	if scheme == "" || credential == "" {
		return "", "", false
	}
	return strings.ToLower(scheme), credential, true
}
