package search

import (
	"context"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lyricsearch/lyrics"
	"lyricsearch/models"
	"lyricsearch/sentryhelper"
)

// LyricsResolver turns a song into lyric lines. Implementations must not
// fail: a song without lyrics resolves to no lines.
type LyricsResolver interface {
	Resolve(ctx context.Context, song models.Song) lyrics.Resolution
}

type Options struct {
	MaxPages  int
	PageSize  int
	BatchSize int
	// Timeout bounds a whole search; results gathered before it fires are
	// still returned.
	Timeout time.Duration
}

type Service struct {
	paginator *Paginator
	resolver  LyricsResolver
	batchSize int
	timeout   time.Duration
}

func NewService(catalog Catalog, resolver LyricsResolver, opts Options) *Service {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Service{
		paginator: NewPaginator(catalog, opts.MaxPages, opts.PageSize),
		resolver:  resolver,
		batchSize: batchSize,
		timeout:   opts.Timeout,
	}
}

// Validate reports missing or blank fields. The artist id is trimmed; the
// keyword is kept as sent since surrounding spaces are part of the search.
func Validate(req models.SearchRequest) (models.SearchRequest, error) {
	req.ArtistID = strings.TrimSpace(req.ArtistID)

	var missing []string
	if req.ArtistID == "" {
		missing = append(missing, "artistId")
	}
	if strings.TrimSpace(req.Keyword) == "" {
		missing = append(missing, "keyword")
	}
	if len(missing) > 0 {
		return req, &InvalidRequestError{Fields: missing}
	}
	return req, nil
}

// Search finds every lyric line containing the keyword across the artist's
// most popular songs. Results follow catalog order regardless of how the
// lyric fetches interleave.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	req, err := Validate(req)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{"module": "search", "artist_id": req.ArtistID, "keyword": req.Keyword})

	span := sentryhelper.StartSpan(ctx, "search.run", "Search lyrics for keyword")
	span.SetTag("artist_id", req.ArtistID)
	span.SetTag("keyword", req.Keyword)
	defer span.Finish()
	ctx = span.Context()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var results []models.Match
	songCount := 0
	err = s.paginator.Each(ctx, req.ArtistID, func(page int, songs []models.Song) error {
		songCount += len(songs)
		results = append(results, s.searchPage(ctx, page, songs, req.Keyword)...)
		return nil
	})
	if err != nil {
		logger.Errorf("search failed: %v", err)
		sentryhelper.CaptureException(ctx, err)
		span.Status = sentry.SpanStatusUnavailable
		return nil, err
	}

	if ctx.Err() != nil {
		logger.Warnf("search cut short (%v), returning %d partial result(s)", ctx.Err(), len(results))
	}
	logger.Infof("found %d match(es) across %d song(s)", len(results), songCount)
	span.Status = sentry.SpanStatusOK
	span.SetData("songs_count", songCount)
	span.SetData("results_count", len(results))
	return models.NewSearchResponse(results), nil
}

// searchPage resolves a page of songs with at most batchSize fetches in
// flight. Each song writes into its own slot so the output keeps page order.
func (s *Service) searchPage(ctx context.Context, page int, songs []models.Song, keyword string) []models.Match {
	span := sentryhelper.StartSpan(ctx, "search.page", "Resolve one catalog page")
	span.SetData("page", page)
	span.SetData("songs_count", len(songs))
	defer span.Finish()
	ctx = span.Context()

	perSong := make([][]models.Match, len(songs))

	// A plain Group: one song failing must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(s.batchSize)
	for i, song := range songs {
		g.Go(func() error {
			res := s.resolver.Resolve(ctx, song)
			for _, m := range lyrics.Extract(res.Lines, keyword) {
				perSong[i] = append(perSong[i], m.ForSong(song))
			}
			return nil
		})
	}
	_ = g.Wait()

	var matches []models.Match
	for _, m := range perSong {
		matches = append(matches, m...)
	}
	return matches
}
