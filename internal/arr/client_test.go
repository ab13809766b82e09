package arr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dupefinder/internal/config"
)

func TestRadarrPreferredFile(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"movieFile":{"relativePath":"Movie.2019.Remux.mkv"}}]`))
	}))
	defer server.Close()

	client := NewRadarr(config.Arr{Enabled: true, URL: server.URL, APIKey: "secret", TimeoutSeconds: 5})
	file, err := client.PreferredFile(context.Background(), 603)
	if err != nil {
		t.Fatalf("PreferredFile: %v", err)
	}
	if file != "Movie.2019.Remux.mkv" {
		t.Fatalf("file = %q", file)
	}
	if gotPath != "/api/v3/movie" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "tmdbId=603" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotKey != "secret" {
		t.Errorf("api key = %q", gotKey)
	}
}

func TestSonarrPreferredFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/series" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("tvdbId"); got != "81189" {
			t.Errorf("tvdbId = %q", got)
		}
		w.Write([]byte(`[{"episodeFile":{"relativePath":"Show - 02x03 - Name.mkv"}}]`))
	}))
	defer server.Close()

	client := NewSonarr(config.Arr{Enabled: true, URL: server.URL, APIKey: "k", TimeoutSeconds: 5})
	file, err := client.PreferredFile(context.Background(), 81189)
	if err != nil {
		t.Fatalf("PreferredFile: %v", err)
	}
	if file != "Show - 02x03 - Name.mkv" {
		t.Fatalf("file = %q", file)
	}
}

func TestPreferredFileNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewRadarr(config.Arr{URL: server.URL, APIKey: "k", TimeoutSeconds: 5})
	file, err := client.PreferredFile(context.Background(), 1)
	if err != nil {
		t.Fatalf("PreferredFile: %v", err)
	}
	if file != "" {
		t.Fatalf("expected empty preference, got %q", file)
	}
}

func TestPreferredFileMissingFileEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"Some Movie"}]`))
	}))
	defer server.Close()

	client := NewRadarr(config.Arr{URL: server.URL, APIKey: "k", TimeoutSeconds: 5})
	file, err := client.PreferredFile(context.Background(), 1)
	if err != nil {
		t.Fatalf("PreferredFile: %v", err)
	}
	if file != "" {
		t.Fatalf("expected empty preference, got %q", file)
	}
}

func TestPreferredFileServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewRadarr(config.Arr{URL: server.URL, APIKey: "k", TimeoutSeconds: 5})
	if _, err := client.PreferredFile(context.Background(), 1); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
