package lyrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"lyricsearch/models"
)

func TestRelayTarget(t *testing.T) {
	tests := []struct {
		name   string
		relay  string
		target string
		want   string
	}{
		{
			name:   "plain relay",
			relay:  "https://relay.example/raw",
			target: "https://genius.com/Artist-song-lyrics",
			want:   "https://relay.example/raw?url=https%3A%2F%2Fgenius.com%2FArtist-song-lyrics",
		},
		{
			name:   "relay with query",
			relay:  "https://relay.example/get?key=abc",
			target: "https://genius.com/x",
			want:   "https://relay.example/get?key=abc&url=https%3A%2F%2Fgenius.com%2Fx",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := relayTarget(tt.relay, tt.target)
			if err != nil {
				t.Fatalf("relayTarget() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("relayTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageFetcherDirect(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := NewPageFetcher("TestAgent/1.0", "")
	body, err := f.Fetch(context.Background(), srv.URL+"/song")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != "<html>ok</html>" {
		t.Errorf("Fetch() body = %q", body)
	}
	if gotUA != "TestAgent/1.0" {
		t.Errorf("User-Agent = %q, want TestAgent/1.0", gotUA)
	}
}

func TestPageFetcherBadStatusWithoutRelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewPageFetcher("ua", "").Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("Fetch() error = %v, want ErrBadStatus", err)
	}
}

func TestPageFetcherFallsBackToRelay(t *testing.T) {
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer blocked.Close()

	var relayedURL string
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relayedURL = r.URL.Query().Get("url")
		w.Write([]byte("relayed body"))
	}))
	defer relay.Close()

	target := blocked.URL + "/Artist-song-lyrics"
	body, err := NewPageFetcher("ua", relay.URL+"/raw").Fetch(context.Background(), target)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != "relayed body" {
		t.Errorf("Fetch() body = %q, want relayed body", body)
	}
	if relayedURL != target {
		t.Errorf("relay received url=%q, want %q", relayedURL, target)
	}
}

const (
	lyricPage     = `<html><body><div data-lyrics-container="true">a<br>b</div></body></html>`
	challengePage = `<html><body><h1>Just a moment...</h1><p>Checking your browser</p></body></html>`
)

func TestPageFetcherRelaysChallengePage(t *testing.T) {
	tests := []struct {
		name        string
		relayStatus int
		want        string
	}{
		{"relay has lyrics", http.StatusOK, lyricPage},
		{"relay fails", http.StatusBadGateway, challengePage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(challengePage))
			}))
			defer direct.Close()

			var relayHits int32
			relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&relayHits, 1)
				w.WriteHeader(tt.relayStatus)
				w.Write([]byte(lyricPage))
			}))
			defer relay.Close()

			body, err := NewPageFetcher("ua", relay.URL).Fetch(context.Background(), direct.URL)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if body != tt.want {
				t.Errorf("Fetch() body = %q, want %q", body, tt.want)
			}
			if atomic.LoadInt32(&relayHits) != 1 {
				t.Errorf("relay hits = %d, want 1", relayHits)
			}
		})
	}
}

func TestPageFetcherChallengePageWithoutRelay(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(challengePage))
	}))
	defer direct.Close()

	body, err := NewPageFetcher("ua", "").Fetch(context.Background(), direct.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != challengePage {
		t.Errorf("Fetch() body = %q, want the direct page", body)
	}
}

func TestHasContainer(t *testing.T) {
	tests := []struct {
		markup string
		want   bool
	}{
		{lyricPage, true},
		{`<div class="lyrics"><p>x</p></div>`, true},
		{`<div class="rg_embed_body">x</div>`, true},
		{challengePage, false},
		{"plain text", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasContainer(tt.markup); got != tt.want {
			t.Errorf("HasContainer(%q) = %v, want %v", tt.markup, got, tt.want)
		}
	}
}

func TestPageFetcherSkipsRelayOnSuccess(t *testing.T) {
	var relayHits int32
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&relayHits, 1)
	}))
	defer relay.Close()
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(lyricPage))
	}))
	defer direct.Close()

	body, err := NewPageFetcher("ua", relay.URL).Fetch(context.Background(), direct.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != lyricPage {
		t.Errorf("Fetch() body = %q, want direct page", body)
	}
	if atomic.LoadInt32(&relayHits) != 0 {
		t.Errorf("relay hits = %d, want 0", relayHits)
	}
}

type recordingFetcher struct {
	targets []string
}

func (r *recordingFetcher) Fetch(ctx context.Context, target string) (string, error) {
	r.targets = append(r.targets, target)
	return "", nil
}

func TestPageAndMobileStrategyTargets(t *testing.T) {
	rec := &recordingFetcher{}
	song := models.Song{ID: 378195, URL: "https://genius.com/Kanye-west-stronger-lyrics"}

	if _, err := NewPageStrategy(rec).Fetch(context.Background(), song); err != nil {
		t.Fatalf("page Fetch() error = %v", err)
	}
	if _, err := NewMobileStrategy(rec, "https://genius.com/mobile/lyrics/").Fetch(context.Background(), song); err != nil {
		t.Fatalf("mobile Fetch() error = %v", err)
	}

	want := []string{
		"https://genius.com/Kanye-west-stronger-lyrics",
		"https://genius.com/mobile/lyrics/378195",
	}
	if len(rec.targets) != len(want) {
		t.Fatalf("targets = %v, want %v", rec.targets, want)
	}
	for i := range want {
		if rec.targets[i] != want[i] {
			t.Errorf("target[%d] = %q, want %q", i, rec.targets[i], want[i])
		}
	}
}

func TestPageStrategyWithoutURL(t *testing.T) {
	rec := &recordingFetcher{}
	if _, err := NewPageStrategy(rec).Fetch(context.Background(), models.Song{ID: 1}); err == nil {
		t.Error("expected error for song without URL")
	}
	if len(rec.targets) != 0 {
		t.Errorf("fetcher called with %v, want no calls", rec.targets)
	}
}

type fakeEmbedSource struct {
	gotID int
}

func (f *fakeEmbedSource) EmbedContent(ctx context.Context, songID int) (string, error) {
	f.gotID = songID
	return `<div class="rg_embed_body">x</div>`, nil
}

func TestEmbedStrategy(t *testing.T) {
	src := &fakeEmbedSource{}
	markup, err := NewEmbedStrategy(src).Fetch(context.Background(), models.Song{ID: 42})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if src.gotID != 42 {
		t.Errorf("EmbedContent called with %d, want 42", src.gotID)
	}
	if got := Normalize(markup).Lines; len(got) != 1 || got[0] != "x" {
		t.Errorf("normalized embed = %v, want [x]", got)
	}
}
