package lyrics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lyricsearch/models"
)

// Strategy is one way of obtaining raw lyric markup for a song.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, song models.Song) (string, error)
}

// Fetcher downloads a URL and returns its body.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (string, error)
}

// EmbedSource returns the lyric markup embedded in a song's catalog record.
type EmbedSource interface {
	EmbedContent(ctx context.Context, songID int) (string, error)
}

var errNoURL = errors.New("song has no URL")

// PageStrategy scrapes the song's canonical page.
type PageStrategy struct {
	fetcher Fetcher
}

func NewPageStrategy(fetcher Fetcher) *PageStrategy {
	return &PageStrategy{fetcher: fetcher}
}

func (s *PageStrategy) Name() string { return "page" }

func (s *PageStrategy) Fetch(ctx context.Context, song models.Song) (string, error) {
	if song.URL == "" {
		return "", errNoURL
	}
	return s.fetcher.Fetch(ctx, song.URL)
}

// MobileStrategy scrapes the mobile-formatted page addressed by song id.
type MobileStrategy struct {
	fetcher Fetcher
	baseURL string
}

func NewMobileStrategy(fetcher Fetcher, baseURL string) *MobileStrategy {
	return &MobileStrategy{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *MobileStrategy) Name() string { return "mobile" }

func (s *MobileStrategy) Fetch(ctx context.Context, song models.Song) (string, error) {
	return s.fetcher.Fetch(ctx, fmt.Sprintf("%s/%d", s.baseURL, song.ID))
}

// EmbedStrategy reads the embedded lyric markup from the catalog API.
type EmbedStrategy struct {
	source EmbedSource
}

func NewEmbedStrategy(source EmbedSource) *EmbedStrategy {
	return &EmbedStrategy{source: source}
}

func (s *EmbedStrategy) Name() string { return "embed" }

func (s *EmbedStrategy) Fetch(ctx context.Context, song models.Song) (string, error) {
	return s.source.EmbedContent(ctx, song.ID)
}
