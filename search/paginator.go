package search

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"lyricsearch/models"
)

// Catalog lists an artist's songs one page at a time, most popular first.
type Catalog interface {
	ArtistSongs(ctx context.Context, artistID string, page, perPage int) ([]models.Song, error)
}

// Paginator walks catalog pages sequentially. Page N+1 is only requested once
// page N came back non-empty.
type Paginator struct {
	catalog  Catalog
	maxPages int
	pageSize int
}

func NewPaginator(catalog Catalog, maxPages, pageSize int) *Paginator {
	if maxPages <= 0 {
		maxPages = 3
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Paginator{catalog: catalog, maxPages: maxPages, pageSize: pageSize}
}

// Each calls fn for every non-empty page. A failure on the first page is
// returned wrapped in ErrUpstreamUnavailable; later failures end pagination
// quietly so the caller keeps what it already has. An error returned by fn
// stops pagination and is returned as is.
func (p *Paginator) Each(ctx context.Context, artistID string, fn func(page int, songs []models.Song) error) error {
	logger := log.WithFields(log.Fields{"module": "search", "function": "Paginate", "artist_id": artistID})

	for page := 1; page <= p.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			if page == 1 {
				return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
			logger.Warnf("stopping before page %d: %v", page, err)
			return nil
		}

		songs, err := p.catalog.ArtistSongs(ctx, artistID, page, p.pageSize)
		if err != nil {
			if page == 1 {
				return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
			}
			logger.Warnf("failed to fetch page %d, keeping earlier pages: %v", page, err)
			return nil
		}
		if len(songs) == 0 {
			logger.Tracef("page %d is empty, stopping", page)
			return nil
		}

		logger.Tracef("page %d has %d songs", page, len(songs))
		if err := fn(page, songs); err != nil {
			return err
		}
	}
	return nil
}
