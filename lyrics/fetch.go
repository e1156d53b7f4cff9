package lyrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// maxPageBytes caps how much of a lyric page is read into memory.
const maxPageBytes = 5 << 20

// ErrBadStatus is returned for non-2xx responses.
var ErrBadStatus = errors.New("unexpected HTTP status")

// PageFetcher downloads lyric pages with a browser-like User-Agent. When a
// relay endpoint is configured, failed direct fetches and direct pages without
// a lyric container are retried through it.
type PageFetcher struct {
	httpClient *http.Client
	userAgent  string
	relayURL   string
}

func NewPageFetcher(userAgent, relayURL string) *PageFetcher {
	return &PageFetcher{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent: userAgent,
		relayURL:  relayURL,
	}
}

// Fetch returns the raw body of target.
func (f *PageFetcher) Fetch(ctx context.Context, target string) (string, error) {
	logger := log.WithFields(log.Fields{"module": "lyrics", "function": "Fetch", "url": target})

	body, err := f.get(ctx, target)
	if err == nil && (f.relayURL == "" || HasContainer(body)) {
		return body, nil
	}
	if f.relayURL == "" || ctx.Err() != nil {
		if err == nil {
			return body, nil
		}
		return "", err
	}

	if err != nil {
		logger.Debugf("direct fetch failed (%v), retrying via relay", err)
	} else {
		logger.Debug("direct page has no lyric container, retrying via relay")
	}
	relayed, relayErr := relayTarget(f.relayURL, target)
	if relayErr == nil {
		var relayBody string
		relayBody, relayErr = f.get(ctx, relayed)
		if relayErr == nil {
			return relayBody, nil
		}
	}

	// Relay failed too: the direct page is still returned as is.
	if err == nil {
		logger.Debugf("relay failed (%v), keeping direct page", relayErr)
		return body, nil
	}
	return "", fmt.Errorf("direct: %v; relay: %w", err, relayErr)
}

func (f *PageFetcher) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	log.Tracef("Fetching lyric page: %s", target)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	log.Tracef("Fetched %s (%d bytes)", target, len(body))
	return string(body), nil
}

// relayTarget builds "relay?url=<encoded target>", keeping any query the
// relay URL already has.
func relayTarget(relay, target string) (string, error) {
	u, err := url.Parse(relay)
	if err != nil {
		return "", fmt.Errorf("invalid relay URL: %w", err)
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
