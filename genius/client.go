package genius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"lyricsearch/models"
	"lyricsearch/sentryhelper"
)

var (
	// ErrUpstream wraps every failure talking to the catalog API.
	ErrUpstream = errors.New("genius: upstream unavailable")
	// ErrMissingToken is returned when no access token was configured.
	ErrMissingToken = fmt.Errorf("%w: missing access token", ErrUpstream)
)

// StatusError carries a non-2xx status from the catalog API.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("genius: %s returned status %d", e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

type Client struct {
	httpClient *http.Client
	baseURL    string
	hasToken   bool
}

// New builds a client authenticating with a static bearer token. An empty
// token still yields a usable client whose calls fail with ErrMissingToken.
func New(accessToken, baseURL string) *Client {
	base := &http.Client{Timeout: 10 * time.Second}
	httpClient := base
	if accessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: accessToken,
			TokenType:   "Bearer",
		}))
		httpClient.Timeout = base.Timeout
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		hasToken:   accessToken != "",
	}
}

type songsResponse struct {
	Response struct {
		Songs []struct {
			ID          int    `json:"id"`
			Title       string `json:"title"`
			URL         string `json:"url"`
			ArtistNames string `json:"artist_names"`
		} `json:"songs"`
		NextPage *int `json:"next_page"`
	} `json:"response"`
}

type songResponse struct {
	Response struct {
		Song struct {
			ID           int    `json:"id"`
			EmbedContent string `json:"embed_content"`
		} `json:"song"`
	} `json:"response"`
}

// SearchArtists proxies a free-text lookup and returns the raw JSON payload.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]byte, error) {
	span := sentryhelper.StartSpan(ctx, "genius.search", "Search Genius API")
	span.SetTag("query", query)
	defer span.Finish()

	body, err := c.get(span.Context(), "/search", url.Values{"q": {query}})
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}
	if !json.Valid(body) {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("%w: invalid JSON from /search", ErrUpstream)
	}
	span.Status = sentry.SpanStatusOK
	return body, nil
}

// ArtistSongs returns one page of an artist's songs sorted by popularity.
func (c *Client) ArtistSongs(ctx context.Context, artistID string, page, perPage int) ([]models.Song, error) {
	logger := log.WithFields(log.Fields{"module": "genius", "function": "ArtistSongs", "artist_id": artistID, "page": page})

	span := sentryhelper.StartSpan(ctx, "genius.artist_songs", "Get artist songs from Genius API")
	span.SetTag("artist_id", artistID)
	span.SetTag("page", strconv.Itoa(page))
	defer span.Finish()

	params := url.Values{
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
		"sort":     {"popularity"},
	}
	body, err := c.get(span.Context(), "/artists/"+url.PathEscape(artistID)+"/songs", params)
	if err != nil {
		logger.Errorf("failed to fetch songs: %v", err)
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	var parsed songsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("%w: decode songs: %v", ErrUpstream, err)
	}

	songs := make([]models.Song, 0, len(parsed.Response.Songs))
	for _, s := range parsed.Response.Songs {
		songs = append(songs, models.Song{
			ID:          s.ID,
			Title:       s.Title,
			URL:         s.URL,
			ArtistNames: s.ArtistNames,
		})
	}

	logger.Tracef("fetched %d songs", len(songs))
	span.Status = sentry.SpanStatusOK
	span.SetData("songs_count", len(songs))
	return songs, nil
}

// EmbedContent returns the embedded lyric markup of a song record.
func (c *Client) EmbedContent(ctx context.Context, songID int) (string, error) {
	span := sentryhelper.StartSpan(ctx, "genius.song", "Get song from Genius API")
	span.SetTag("song_id", strconv.Itoa(songID))
	defer span.Finish()

	body, err := c.get(span.Context(), "/songs/"+strconv.Itoa(songID), nil)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return "", err
	}

	var parsed songResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return "", fmt.Errorf("%w: decode song: %v", ErrUpstream, err)
	}
	span.Status = sentry.SpanStatusOK
	return parsed.Response.Song.EmbedContent, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if !c.hasToken {
		return nil, ErrMissingToken
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	return body, nil
}
