package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"dupefinder/internal/config"
	"dupefinder/internal/media"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to one Plex server. It implements both the library client
// (section lookup, duplicate search, availability recheck) and the deletion
// client (remove a media entry by identifier).
type Client struct {
	baseURL string
	token   string
	client  HTTPDoer

	mu       sync.Mutex
	sections map[string]directory
}

// NewClient constructs a Plex client from configuration.
func NewClient(cfg *config.Config) *Client {
	return New(cfg.Plex.URL, cfg.Plex.Token, &http.Client{
		Timeout: time.Duration(cfg.Plex.TimeoutSeconds) * time.Second,
	})
}

// New constructs a Plex client with an explicit HTTP backend.
func New(baseURL, token string, client HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

// SectionKind reports whether a library section holds movies or episodes.
// An unknown section is an error: the whole run depends on it.
func (c *Client) SectionKind(ctx context.Context, sectionName string) (media.Kind, error) {
	dir, err := c.section(ctx, sectionName)
	if err != nil {
		return media.KindUnknown, err
	}
	if dir.Type == "show" {
		return media.KindEpisode, nil
	}
	return media.KindMovie, nil
}

// Duplicates lists every library item in the section that has more than one
// stored copy, converted to neutral records.
func (c *Client) Duplicates(ctx context.Context, sectionName string) ([]media.Item, error) {
	dir, err := c.section(ctx, sectionName)
	if err != nil {
		return nil, err
	}

	searchType := searchTypeMovie
	if dir.Type == "show" {
		searchType = searchTypeEpisode
	}

	query := url.Values{}
	query.Set("duplicate", "1")
	query.Set("type", fmt.Sprintf("%d", searchType))
	query.Set("checkFiles", "1")

	var container mediaContainer
	path := fmt.Sprintf("/library/sections/%s/all?%s", dir.Key, query.Encode())
	if err := c.get(ctx, path, &container); err != nil {
		return nil, fmt.Errorf("list duplicates for section %q: %w", sectionName, err)
	}

	items := make([]media.Item, 0, len(container.Videos))
	for _, v := range container.Videos {
		items = append(items, v.toItem())
	}
	return items, nil
}

// Reload re-fetches one item with file checks enabled, so an "unavailable"
// flag can be re-verified before it is trusted.
func (c *Client) Reload(ctx context.Context, ratingKey string) (*media.Item, error) {
	var container mediaContainer
	path := fmt.Sprintf("/library/metadata/%s?checkFiles=1", url.PathEscape(ratingKey))
	if err := c.get(ctx, path, &container); err != nil {
		return nil, fmt.Errorf("reload item %s: %w", ratingKey, err)
	}
	if len(container.Videos) == 0 {
		return nil, fmt.Errorf("reload item %s: empty response", ratingKey)
	}
	item := container.Videos[0].toItem()
	return &item, nil
}

// Delete removes one media entry from the library index. A non-200 response
// is an error; the caller decides whether that is fatal.
func (c *Client) Delete(ctx context.Context, itemKey string, mediaID int64) error {
	deleteURL := fmt.Sprintf("%s%s/media/%d", c.baseURL, itemKey, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete media %d: %w", mediaID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete media %d: server returned %d", mediaID, resp.StatusCode)
	}
	return nil
}

func (c *Client) section(ctx context.Context, name string) (directory, error) {
	sections, err := c.ensureSections(ctx)
	if err != nil {
		return directory{}, err
	}
	dir, ok := sections[strings.ToLower(name)]
	if !ok {
		return directory{}, fmt.Errorf("plex library %q not found", name)
	}
	return dir, nil
}

func (c *Client) ensureSections(ctx context.Context) (map[string]directory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sections != nil {
		return c.sections, nil
	}

	var container mediaContainer
	if err := c.get(ctx, "/library/sections", &container); err != nil {
		return nil, fmt.Errorf("fetch plex sections: %w", err)
	}

	sections := make(map[string]directory, len(container.Directories))
	for _, dir := range container.Directories {
		if dir.Key == "" || dir.Title == "" {
			continue
		}
		sections[strings.ToLower(dir.Title)] = dir
	}
	c.sections = sections
	return sections, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("plex request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("plex returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
