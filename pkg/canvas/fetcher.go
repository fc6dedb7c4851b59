package canvas

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/agentstation/gradesync/internal/transport"
	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/logging"
)

// Fetcher retrieves every item of a paginated list endpoint by following
// rel="next" links.
type Fetcher struct {
	http *transport.Client
}

// NewFetcher creates a Fetcher on top of an authenticated transport client.
func NewFetcher(http *transport.Client) *Fetcher {
	return &Fetcher{http: http}
}

// FetchAll returns the concatenated items of every page. params are applied to
// the first request only; next links are followed verbatim.
func (f *Fetcher) FetchAll(ctx context.Context, rawURL string, params url.Values) ([]json.RawMessage, error) {
	logger := logging.FromContext(ctx)

	next, err := withParams(rawURL, params)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	seen := make(map[string]bool)
	for page := 1; next != ""; page++ {
		if seen[next] {
			return nil, errors.NewValidationError("link", next, "pagination loop detected")
		}
		seen[next] = true

		resp, err := f.http.Get(ctx, next)
		if err != nil {
			return nil, err
		}
		link := resp.Header.Get("Link")

		var pageItems []json.RawMessage
		if err := transport.DecodeResponse(resp, "list "+resourceName(next), &pageItems); err != nil {
			logger.Error().Err(err).Int("page", page).Msg("Failed to fetch page")
			return nil, err
		}
		items = append(items, pageItems...)

		logger.Debug().Int("page", page).Int("items", len(pageItems)).Msg("Fetched page")
		next = NextLink(link)
	}

	return items, nil
}

// FetchAllAs fetches every page and decodes the items into T.
func FetchAllAs[T any](ctx context.Context, f *Fetcher, rawURL string, params url.Values) ([]T, error) {
	raw, err := f.FetchAll(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, errors.WrapParse("json", resourceName(rawURL), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// NextLink returns the rel="next" target of a Link header, or "".
func NextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end <= start {
			continue
		}
		return strings.TrimSpace(part[start+1 : end])
	}
	return ""
}

func withParams(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.NewValidationError("url", rawURL, err.Error())
	}
	if len(params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for k, vs := range params {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// resourceName returns the last path segment, e.g. "users".
func resourceName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := strings.TrimRight(u.Path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
