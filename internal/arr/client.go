package arr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dupefinder/internal/config"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// fileRef is the file payload both services expose for their preferred copy.
type fileRef struct {
	RelativePath string `json:"relativePath"`
}

type movieResource struct {
	MovieFile *fileRef `json:"movieFile"`
}

type seriesResource struct {
	EpisodeFile *fileRef `json:"episodeFile"`
}

// Client queries one *arr service for its preferred file.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer

	path      string
	idParam   string
	unmarshal func([]byte) (string, error)
}

// NewRadarr builds a movie-authority client keyed by TMDB id.
func NewRadarr(cfg config.Arr) *Client {
	return newClient(cfg, "/api/v3/movie", "tmdbId", func(body []byte) (string, error) {
		var movies []movieResource
		if err := json.Unmarshal(body, &movies); err != nil {
			return "", err
		}
		if len(movies) == 0 || movies[0].MovieFile == nil {
			return "", nil
		}
		return movies[0].MovieFile.RelativePath, nil
	})
}

// NewSonarr builds a series-authority client keyed by TVDB id.
func NewSonarr(cfg config.Arr) *Client {
	return newClient(cfg, "/api/v3/series", "tvdbId", func(body []byte) (string, error) {
		var series []seriesResource
		if err := json.Unmarshal(body, &series); err != nil {
			return "", err
		}
		if len(series) == 0 || series[0].EpisodeFile == nil {
			return "", nil
		}
		return series[0].EpisodeFile.RelativePath, nil
	})
}

func newClient(cfg config.Arr, path, idParam string, unmarshal func([]byte) (string, error)) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		apiKey:    cfg.APIKey,
		client:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		path:      path,
		idParam:   idParam,
		unmarshal: unmarshal,
	}
}

// WithHTTPDoer replaces the HTTP backend, for tests.
func (c *Client) WithHTTPDoer(doer HTTPDoer) *Client {
	c.client = doer
	return c
}

// PreferredFile returns the relative filename the service considers
// canonical for the given external id. An empty string means the service
// has no preference (no match, no file entry, or an empty payload).
func (c *Client) PreferredFile(ctx context.Context, externalID int64) (string, error) {
	query := url.Values{}
	query.Set(c.idParam, strconv.FormatInt(externalID, 10))

	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, c.path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup preferred file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("lookup preferred file: server returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	name, err := c.unmarshal(body)
	if err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return name, nil
}
