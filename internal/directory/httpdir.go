package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"

	"keysync/internal/domain"
)

// HTTPDirectory talks to a path-addressed document store over JSON HTTP,
// with change streams over websocket. Paths map onto <base>/v1/<path>.
type HTTPDirectory struct {
	base   string
	http   *http.Client
	dialer *websocket.Dialer
	log    slog.Logger
}

// NewHTTP returns a directory client for base using httpClient.
func NewHTTP(base string, httpClient *http.Client) *HTTPDirectory {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPDirectory{
		base:   strings.TrimRight(base, "/"),
		http:   httpClient,
		dialer: websocket.DefaultDialer,
		log:    slog.Disabled,
	}
}

// SetLogger replaces the disabled default logger.
func (c *HTTPDirectory) SetLogger(log slog.Logger) { c.log = log }

// Put writes value at path. Any transport problem or non-2xx status is a
// Network error; the queueing decision is the caller's.
func (c *HTTPDirectory) Put(ctx context.Context, path string, value any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(value); err != nil {
		return domain.Wrap(domain.Storage, err, "encode value for "+path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.docURL(path), buf)
	if err != nil {
		return domain.Wrap(domain.Network, err, "build put "+path)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Wrap(domain.Network, err, "directory put "+path)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return domain.Ef(domain.Network, "directory put %s: %s", path, resp.Status).
			WithDetail("status", resp.StatusCode)
	}
	return nil
}

// Get reads the value at path into out. A 404 means definitively absent and
// is reported as found=false with no error.
func (c *HTTPDirectory) Get(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(path), nil)
	if err != nil {
		return false, domain.Wrap(domain.Network, err, "build get "+path)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, domain.Wrap(domain.Network, err, "directory get "+path)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode/100 != 2:
		return false, domain.Ef(domain.Network, "directory get %s: %s", path, resp.Status).
			WithDetail("status", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, domain.Wrap(domain.Network, err, "decode "+path)
	}
	return true, nil
}

// Watch opens a websocket stream of the value at path. The returned channel
// closes when ctx is cancelled or the stream breaks.
func (c *HTTPDirectory) Watch(ctx context.Context, path string) (<-chan json.RawMessage, error) {
	wsURL, err := c.watchURL(path)
	if err != nil {
		return nil, err
	}
	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, domain.Wrap(domain.Network, err, "directory watch "+path)
	}

	ch := make(chan json.RawMessage)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					c.log.Debugf("Watch stream for %s ended: %v", path, err)
				}
				return
			}
			select {
			case ch <- json.RawMessage(msg):
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (c *HTTPDirectory) docURL(path string) string {
	return c.base + "/v1/" + strings.TrimLeft(path, "/")
}

func (c *HTTPDirectory) watchURL(path string) (string, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return "", domain.Wrap(domain.Network, err, "parse directory base URL")
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/watch"
	u.RawQuery = url.Values{"path": {strings.TrimLeft(path, "/")}}.Encode()
	return u.String(), nil
}

// Compile-time assertion that HTTPDirectory implements domain.Directory.
var _ domain.Directory = (*HTTPDirectory)(nil)
