package lyrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lyricsearch/models"
)

func TestLrclibStrategy(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		status    int
		want      []string
		wantError bool
	}{
		{
			name:   "plain lyrics",
			body:   `[{"id":1,"trackName":"Song","plainLyrics":"[Chorus]\nFirst <line>\n\nSecond & last"}]`,
			status: http.StatusOK,
			want:   []string{"[Chorus]", "First <line>", "Second & last"},
		},
		{
			name:   "synced lyrics stripped",
			body:   `[{"id":1,"plainLyrics":"","syncedLyrics":"[00:01.00] one\n[00:02.50] two"}]`,
			status: http.StatusOK,
			want:   []string{"one", "two"},
		},
		{
			name:      "no results",
			body:      `[]`,
			status:    http.StatusOK,
			wantError: true,
		},
		{
			name:      "bad status",
			body:      `{}`,
			status:    http.StatusInternalServerError,
			wantError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/search" {
					t.Errorf("path = %q, want /api/search", r.URL.Path)
				}
				gotQuery = r.URL.Query().Get("q")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			song := models.Song{ID: 1, Title: "Song", ArtistNames: "Artist"}
			markup, err := NewLrclibStrategy().WithBaseURL(srv.URL).Fetch(context.Background(), song)
			if gotQuery != "Artist Song" {
				t.Errorf("query = %q, want %q", gotQuery, "Artist Song")
			}
			if (err != nil) != tt.wantError {
				t.Fatalf("Fetch() error = %v, wantError %v", err, tt.wantError)
			}
			if tt.wantError {
				return
			}
			got := Normalize(markup)
			if got.Degraded {
				t.Error("lrclib markup should normalize without degrading")
			}
			if diff := cmp.Diff(tt.want, got.Lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
