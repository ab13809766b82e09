package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateArr("radarr", c.Radarr); err != nil {
		return err
	}
	if err := c.validateArr("sonarr", c.Sonarr); err != nil {
		return err
	}
	if err := c.validateScores(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlex() error {
	if c.Plex.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dupefinder/config.toml"
		}
		return fmt.Errorf("plex.url is required; edit %s (create with 'dupefinder config init')", defaultPath)
	}
	if !strings.HasPrefix(c.Plex.URL, "http://") && !strings.HasPrefix(c.Plex.URL, "https://") {
		return fmt.Errorf("plex.url must start with http:// or https://, got %q", c.Plex.URL)
	}
	if c.Plex.Token == "" {
		return errors.New("plex.token must be set")
	}
	if len(c.Plex.Libraries) == 0 {
		return errors.New("plex.libraries must list at least one library section")
	}
	for _, name := range c.Plex.Libraries {
		if strings.TrimSpace(name) == "" {
			return errors.New("plex.libraries must not contain empty names")
		}
	}
	return nil
}

func (c *Config) validateArr(section string, arr Arr) error {
	if !arr.Enabled {
		return nil
	}
	if strings.TrimSpace(arr.URL) == "" {
		return fmt.Errorf("%s.url must be set when %s.enabled is true", section, section)
	}
	if strings.TrimSpace(arr.APIKey) == "" {
		return fmt.Errorf("%s.api_key must be set when %s.enabled is true", section, section)
	}
	return nil
}

func (c *Config) validateScores() error {
	for _, table := range []struct {
		name    string
		entries []WeightEntry
	}{
		{"scores.audio_codec", c.Scores.AudioCodec},
		{"scores.video_codec", c.Scores.VideoCodec},
		{"scores.video_resolution", c.Scores.VideoResolution},
	} {
		for _, entry := range table.entries {
			if strings.TrimSpace(entry.Name) == "" {
				return fmt.Errorf("%s entries must have a name", table.name)
			}
		}
	}
	for _, entry := range c.Scores.Filename {
		if strings.TrimSpace(entry.Pattern) == "" {
			return errors.New("scores.filename entries must have a pattern")
		}
		// Surface malformed globs at load time instead of during scoring.
		if _, err := path.Match(strings.ToLower(entry.Pattern), "probe"); err != nil {
			return fmt.Errorf("scores.filename pattern %q: %w", entry.Pattern, err)
		}
	}
	return nil
}
