package lyrics

import (
	"context"
	"strconv"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"lyricsearch/models"
	"lyricsearch/sentryhelper"
)

// Resolution is the outcome of resolving one song's lyrics.
type Resolution struct {
	Lines []string
	// Source names the strategy the lines came from, empty when none did.
	Source   string
	Degraded bool
}

// Resolver walks an ordered list of strategies until one yields lyric
// container content.
type Resolver struct {
	strategies  []Strategy
	songTimeout time.Duration
}

func NewResolver(songTimeout time.Duration, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, songTimeout: songTimeout}
}

// Strategies returns the strategy names in attempt order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve never fails: strategy errors are logged and the next strategy is
// tried. When no strategy finds a lyric container, the first non-empty
// degraded result is returned; otherwise the resolution has no lines.
func (r *Resolver) Resolve(ctx context.Context, song models.Song) Resolution {
	logger := log.WithFields(log.Fields{"module": "lyrics", "song_id": song.ID, "title": song.Title})

	span := sentryhelper.StartSpan(ctx, "lyrics.resolve", "Resolve lyrics for song")
	span.SetTag("song_id", strconv.Itoa(song.ID))
	defer span.Finish()

	if r.songTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(span.Context(), r.songTimeout)
		defer cancel()
	} else {
		ctx = span.Context()
	}

	var fallback *Resolution
	for _, strategy := range r.strategies {
		if ctx.Err() != nil {
			logger.Warnf("giving up on song: %v", ctx.Err())
			break
		}

		res, ok := r.attempt(ctx, strategy, song, logger)
		if !ok {
			continue
		}
		if !res.Degraded {
			span.Status = sentry.SpanStatusOK
			span.SetData("source", res.Source)
			span.SetData("lines", len(res.Lines))
			return res
		}
		if fallback == nil {
			fallback = &res
		}
	}

	if fallback != nil {
		logger.Warnf("no lyric container found, using %d degraded line(s) from %s", len(fallback.Lines), fallback.Source)
		span.Status = sentry.SpanStatusOK
		span.SetData("source", fallback.Source)
		span.SetData("degraded", true)
		return *fallback
	}

	logger.Warn("all lyric sources exhausted, song contributes no lines")
	sentryhelper.AddBreadcrumb(ctx, "lyrics", "song lyrics unavailable", map[string]interface{}{
		"song_id": song.ID,
		"title":   song.Title,
	})
	span.Status = sentry.SpanStatusNotFound
	return Resolution{}
}

func (r *Resolver) attempt(ctx context.Context, strategy Strategy, song models.Song, logger *log.Entry) (Resolution, bool) {
	logger = logger.WithField("strategy", strategy.Name())
	logger.Debug("trying lyric source")

	span := sentryhelper.StartSpan(ctx, "lyrics.strategy", "Fetch lyrics via "+strategy.Name())
	span.SetTag("strategy", strategy.Name())
	defer span.Finish()

	markup, err := strategy.Fetch(span.Context(), song)
	if err != nil {
		logger.Warnf("lyric source failed: %v", err)
		span.Status = sentry.SpanStatusUnavailable
		return Resolution{}, false
	}

	normalized := Normalize(markup)
	if len(normalized.Lines) == 0 {
		logger.Debug("lyric source returned no lines")
		span.Status = sentry.SpanStatusNotFound
		return Resolution{}, false
	}

	logger.WithFields(log.Fields{"lines": len(normalized.Lines), "degraded": normalized.Degraded}).Debug("parsed lyric lines")
	span.Status = sentry.SpanStatusOK
	span.SetData("lines", len(normalized.Lines))
	return Resolution{
		Lines:    normalized.Lines,
		Source:   strategy.Name(),
		Degraded: normalized.Degraded,
	}, true
}
