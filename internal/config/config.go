package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Runtime contains toggles that shape a scan run.
type Runtime struct {
	// DryRun simulates deletions: totals are counted but no DELETE is sent.
	DryRun bool `toml:"dry_run"`
	// AutoDelete resolves each group without prompting.
	AutoDelete bool `toml:"auto_delete"`
	// MatchFilepathsOnly restricts duplicate groups to items whose copies all
	// share identical file paths. Scoring is skipped in this mode.
	MatchFilepathsOnly bool `toml:"match_filepaths_only"`
	// SkipFinalResolution disables the keep-one stage entirely, leaving only
	// the availability and container cleanup stages.
	SkipFinalResolution bool `toml:"skip_final_resolution"`
	// FindUnavailable removes copies whose files Plex reports as missing.
	FindUnavailable bool `toml:"find_unavailable"`
	// FindExtraContainers removes copies stored in the extra container format
	// when a copy in another container exists.
	FindExtraContainers bool `toml:"find_extra_containers"`
	// ExtraContainerExt is the container extension targeted by the cleanup
	// above, including the leading dot.
	ExtraContainerExt string `toml:"extra_container_ext"`
	// SkipVersionsFolder excludes copies stored under a "Plex Versions"
	// folder even when Plex did not flag them as optimized.
	SkipVersionsFolder bool `toml:"skip_versions_folder"`
	// DeleteSpacingSeconds is the minimum spacing between DELETE calls.
	DeleteSpacingSeconds int `toml:"delete_spacing_seconds"`
	// LogDir holds activity.log, decisions.log, and the decisions journal.
	LogDir string `toml:"log_dir"`
}

// Plex contains the media server connection settings.
type Plex struct {
	URL                  string   `toml:"url"`
	Token                string   `toml:"token"`
	Libraries            []string `toml:"libraries"`
	TimeoutSeconds       int      `toml:"timeout_seconds"`
	ReloadTimeoutSeconds int      `toml:"reload_timeout_seconds"`
}

// Arr contains the connection settings for one *arr authority
// (Radarr for movies, Sonarr for series).
type Arr struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// VideoBitrate controls the bitrate contribution to the score.
type VideoBitrate struct {
	Enabled    bool    `toml:"enabled"`
	Multiplier float64 `toml:"multiplier"`
}

// Scoring contains the numeric scoring toggles.
type Scoring struct {
	VideoHeightMultiplier float64      `toml:"video_height_multiplier"`
	ScoreFileSize         bool         `toml:"score_file_size"`
	ScoreAudioChannels    bool         `toml:"score_audio_channels"`
	VideoBitrate          VideoBitrate `toml:"video_bitrate"`
}

// WeightEntry maps one codec or resolution label to a score contribution.
// Entries are evaluated in file order; the first case-insensitive match wins.
type WeightEntry struct {
	Name   string `toml:"name"`
	Weight int    `toml:"weight"`
}

// PatternEntry maps a glob pattern against file basenames to a score
// contribution. Unlike WeightEntry tables, every matching pattern
// contributes, once per file path.
type PatternEntry struct {
	Pattern string `toml:"pattern"`
	Weight  int    `toml:"weight"`
}

// Scores holds the ordered weight tables. Arrays of tables are used instead
// of TOML inline tables so the evaluation order is the file order, not map
// order.
type Scores struct {
	AudioCodec      []WeightEntry  `toml:"audio_codec"`
	VideoCodec      []WeightEntry  `toml:"video_codec"`
	VideoResolution []WeightEntry  `toml:"video_resolution"`
	Filename        []PatternEntry `toml:"filename"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dupefinder.
type Config struct {
	Runtime  Runtime  `toml:"runtime"`
	Plex     Plex     `toml:"plex"`
	Radarr   Arr      `toml:"radarr"`
	Sonarr   Arr      `toml:"sonarr"`
	Scoring  Scoring  `toml:"scoring"`
	Scores   Scores   `toml:"scores"`
	SkipList []string `toml:"skip_list"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dupefinder/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has path fields expanded and defaults applied for absent keys.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dupefinder.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Runtime.LogDir) == "" {
		c.Runtime.LogDir = defaultLogDir
	}
	if c.Runtime.LogDir, err = expandPath(c.Runtime.LogDir); err != nil {
		return fmt.Errorf("runtime.log_dir: %w", err)
	}
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	c.Radarr.URL = strings.TrimRight(strings.TrimSpace(c.Radarr.URL), "/")
	c.Sonarr.URL = strings.TrimRight(strings.TrimSpace(c.Sonarr.URL), "/")
	if c.Plex.TimeoutSeconds <= 0 {
		c.Plex.TimeoutSeconds = defaultPlexTimeoutSeconds
	}
	if c.Plex.ReloadTimeoutSeconds <= 0 {
		c.Plex.ReloadTimeoutSeconds = defaultPlexReloadTimeoutSeconds
	}
	if c.Radarr.TimeoutSeconds <= 0 {
		c.Radarr.TimeoutSeconds = defaultArrTimeoutSeconds
	}
	if c.Sonarr.TimeoutSeconds <= 0 {
		c.Sonarr.TimeoutSeconds = defaultArrTimeoutSeconds
	}
	if c.Runtime.DeleteSpacingSeconds <= 0 {
		c.Runtime.DeleteSpacingSeconds = defaultDeleteSpacingSeconds
	}
	if strings.TrimSpace(c.Runtime.ExtraContainerExt) == "" {
		c.Runtime.ExtraContainerExt = defaultExtraContainerExt
	}
	if !strings.HasPrefix(c.Runtime.ExtraContainerExt, ".") {
		c.Runtime.ExtraContainerExt = "." + c.Runtime.ExtraContainerExt
	}
	c.Runtime.ExtraContainerExt = strings.ToLower(c.Runtime.ExtraContainerExt)
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// EnsureDirectories creates the log directory used for logs and the
// decisions journal.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Runtime.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Runtime.LogDir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
