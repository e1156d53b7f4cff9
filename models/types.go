package models

import (
	"bytes"
	"encoding/json"
)

// Song is one entry of an artist's catalog. It only lives for the duration of
// a single search request.
type Song struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	ArtistNames string `json:"artist_names,omitempty"`
}

// Match is a lyric line containing the searched keyword, together with its
// neighbouring lines and the section it belongs to.
type Match struct {
	Match     string  `json:"match"`
	Before    *string `json:"before"`
	After     *string `json:"after"`
	Index     int     `json:"index"`
	Section   *string `json:"section"`
	SongTitle string  `json:"songTitle"`
	SongURL   string  `json:"songUrl"`
}

// ForSong returns a copy of m attributed to song.
func (m Match) ForSong(song Song) Match {
	m.SongTitle = song.Title
	m.SongURL = song.URL
	return m
}

type SearchRequest struct {
	ArtistID string `json:"artistId"`
	Keyword  string `json:"keyword"`
}

// UnmarshalJSON accepts artistId both as a string and as a bare number, the
// form the catalog service hands out.
func (r *SearchRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		ArtistID json.RawMessage `json:"artistId"`
		Keyword  string          `json:"keyword"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Keyword = raw.Keyword
	r.ArtistID = ""

	id := bytes.TrimSpace(raw.ArtistID)
	if len(id) == 0 || bytes.Equal(id, []byte("null")) {
		return nil
	}
	if id[0] == '"' {
		return json.Unmarshal(id, &r.ArtistID)
	}
	var n json.Number
	if err := json.Unmarshal(id, &n); err != nil {
		return err
	}
	r.ArtistID = n.String()
	return nil
}

type SearchResponse struct {
	Results []Match `json:"results"`
}

// NewSearchResponse never serializes results as null.
func NewSearchResponse(results []Match) *SearchResponse {
	if results == nil {
		results = []Match{}
	}
	return &SearchResponse{Results: results}
}
