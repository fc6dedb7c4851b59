package transport

import "net/http"

// Authenticator applies an access token to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {}

// BearerAuth sends the token as an Authorization bearer header.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// HeaderAuth sends the raw token in the named header.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, token string) {
	req.Header.Set(a.Header, token)
}

// QueryAuth sends the token as a query parameter, e.g. Canvas "access_token".
type QueryAuth struct {
	Param string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request, token string) {
	if req.URL == nil {
		return
	}
	query := req.URL.Query()
	query.Set(a.Param, token)
	req.URL.RawQuery = query.Encode()
}

// ForScheme returns the authenticator for a configured scheme name.
// Unknown names fall back to bearer auth.
func ForScheme(scheme string) Authenticator {
	switch scheme {
	case "none":
		return &NoAuth{}
	case "query":
		return &QueryAuth{Param: "access_token"}
	case "header":
		return &HeaderAuth{Header: "Authorization"}
	default:
		return &BearerAuth{}
	}
}
