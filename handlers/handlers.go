package handlers

// handlers expose the lyric search over HTTP. They only translate between
// JSON/query parameters and the search service, mapping errors to statuses.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lyricsearch/models"
	"lyricsearch/search"
	"lyricsearch/sentryhelper"
)

const minArtistQueryLength = 3

// ArtistSearcher proxies free-text artist lookups to the catalog service.
type ArtistSearcher interface {
	SearchArtists(ctx context.Context, query string) ([]byte, error)
}

// LyricsSearcher runs a keyword search over an artist's catalog.
type LyricsSearcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

type Manager struct {
	Artists ArtistSearcher
	Lyrics  LyricsSearcher
}

func NewManager(artists ArtistSearcher, lyrics LyricsSearcher) *Manager {
	return &Manager{Artists: artists, Lyrics: lyrics}
}

// Register mounts the routes on router.
func (m *Manager) Register(router gin.IRoutes) {
	router.GET("/search-artist", m.SearchArtist)
	router.POST("/search-lyrics", m.SearchLyrics)
}

func (m *Manager) SearchArtist(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < minArtistQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search term must be at least 3 characters"})
		return
	}

	body, err := m.Artists.SearchArtists(c.Request.Context(), query)
	if err != nil {
		log.WithFields(log.Fields{"module": "handlers", "query": query}).Errorf("artist search failed: %v", err)
		sentryhelper.CaptureException(c.Request.Context(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch from catalog service", "details": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (m *Manager) SearchLyrics(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	resp, err := m.Lyrics.Search(c.Request.Context(), req)
	if err != nil {
		var invalid *search.InvalidRequestError
		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "fields": invalid.Fields})
		case errors.Is(err, search.ErrUpstreamUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch songs from catalog service", "details": err.Error()})
		default:
			log.WithField("module", "handlers").Errorf("lyrics search failed: %v", err)
			sentryhelper.CaptureException(c.Request.Context(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
