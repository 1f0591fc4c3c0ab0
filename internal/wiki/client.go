// Package wiki fetches server-rendered article markup from a MediaWiki
// action=parse endpoint.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
)

var (
	// ErrNotFound means the source explicitly reports that the title does
	// not exist.
	ErrNotFound = errors.New("page not found")
	// ErrBadResponse means the response decoded but lacked the expected
	// parse envelope.
	ErrBadResponse = errors.New("malformed api response")
	// ErrUnavailable covers transport failures and non-success statuses.
	ErrUnavailable = errors.New("wiki api unavailable")
)

// Client talks to a locale-parameterized wiki parse API. The zero value is
// usable; fields override transport details.
type Client struct {
	// HTTPClient is used when set; otherwise a default client with a
	// conservative timeout is built per call.
	HTTPClient *http.Client
	// UserAgent identifies this tool to the API.
	UserAgent string
	// BaseURL overrides the per-language endpoint, mainly for tests. When
	// empty, https://<lang>.wikipedia.org/w/api.php is used.
	BaseURL string
	// PerRequestTimeout bounds each request. Zero means no extra bound
	// beyond the HTTP client's own timeout.
	PerRequestTimeout time.Duration
}

// parseResponse is the API envelope: either an error payload or a parse
// object holding the rendered markup under text["*"].
type parseResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
	Parse *struct {
		Title string            `json:"title"`
		Text  map[string]string `json:"text"`
	} `json:"parse"`
}

// PageHTML fetches the rendered markup for a titled page. lang defaults to
// "en" and must be a well-formed locale code. Errors map to the sentinel
// taxonomy above: errors.Is(err, ErrNotFound) for missing titles,
// ErrBadResponse for envelope problems, ErrUnavailable otherwise.
func (c *Client) PageHTML(ctx context.Context, title, lang string) ([]byte, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("empty title")
	}
	if lang == "" {
		lang = "en"
	}
	if _, err := language.Parse(lang); err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", lang, err)
	}

	endpoint := c.BaseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("action", "parse")
	q.Set("page", title)
	q.Set("format", "json")
	q.Set("prop", "text")
	q.Set("disabletoc", "1")
	u.RawQuery = q.Encode()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: status 404", ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	var pr parseResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if pr.Error != nil {
		switch pr.Error.Code {
		case "missingtitle", "pagecannotexist", "nosuchpage":
			return nil, fmt.Errorf("%w: %s", ErrNotFound, pr.Error.Info)
		default:
			return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, pr.Error.Code, pr.Error.Info)
		}
	}
	if pr.Parse == nil {
		return nil, fmt.Errorf("%w: no parse data", ErrBadResponse)
	}
	markup, ok := pr.Parse.Text["*"]
	if !ok || markup == "" {
		return nil, fmt.Errorf("%w: no rendered text", ErrBadResponse)
	}
	return []byte(markup), nil
}
