package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"lyricsearch/models"
)

var timestampRegex = regexp.MustCompile(`\[\d+:\d+\.\d+\]`)

var errNoLrclibLyrics = errors.New("lrclib returned no lyrics")

type lrclibResult struct {
	ID           int    `json:"id"`
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	AlbumName    string `json:"albumName"`
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

// LrclibStrategy looks songs up on lrclib.net by artist and title. The plain
// text it returns is wrapped in a lyric container so it normalizes like a
// scraped page.
type LrclibStrategy struct {
	httpClient *http.Client
	baseURL    string
}

func NewLrclibStrategy() *LrclibStrategy {
	return &LrclibStrategy{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: "https://lrclib.net",
	}
}

// WithBaseURL points the strategy at another lrclib instance.
func (s *LrclibStrategy) WithBaseURL(baseURL string) *LrclibStrategy {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

func (s *LrclibStrategy) Name() string { return "lrclib" }

func (s *LrclibStrategy) Fetch(ctx context.Context, song models.Song) (string, error) {
	query := strings.TrimSpace(song.ArtistNames + " " + song.Title)
	u := fmt.Sprintf("%s/api/search?q=%s", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lrclib API returned status %d", resp.StatusCode)
	}

	var results []lrclibResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", err
	}

	for _, res := range results {
		text := res.PlainLyrics
		if text == "" && res.SyncedLyrics != "" {
			text = strings.TrimSpace(timestampRegex.ReplaceAllString(res.SyncedLyrics, ""))
		}
		if text != "" {
			return plainToMarkup(text), nil
		}
	}
	return "", errNoLrclibLyrics
}

func plainToMarkup(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	return `<div data-lyrics-container="true">` + strings.Join(lines, "<br>") + `</div>`
}
