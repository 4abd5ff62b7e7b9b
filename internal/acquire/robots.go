package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// ErrDisallowed reports a URL excluded by the host's robots.txt.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// robotsChecker fetches robots.txt once per host. A robots.txt that cannot
// be fetched allows everything.
type robotsChecker struct {
	client *http.Client
	agent  string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

func newRobotsChecker(client *http.Client, userAgent string) *robotsChecker {
	return &robotsChecker{
		client: client,
		agent:  productToken(userAgent),
		hosts:  make(map[string]*robotstxt.RobotsData),
	}
}

func (r *robotsChecker) allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	data := r.data(ctx, u)
	if data == nil {
		return true, nil
	}
	return data.TestAgent(u.EscapedPath(), r.agent), nil
}

func (r *robotsChecker) data(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.hosts[u.Host]; ok {
		return d
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	var d *robotstxt.RobotsData
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err == nil {
		req.Header.Set("User-Agent", r.agent)
		if resp, err := r.client.Do(req); err == nil {
			d, _ = robotstxt.FromResponse(resp)
			resp.Body.Close()
		}
	}
	r.hosts[u.Host] = d
	return d
}

// productToken reduces a User-Agent to the product name robots.txt groups
// match on ("who-pdf-reader/0.1 (+url)" becomes "who-pdf-reader").
func productToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return "*"
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
