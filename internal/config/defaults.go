package config

const (
	defaultLogDir                   = "~/.local/share/dupefinder/logs"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultPlexTimeoutSeconds       = 30
	defaultPlexReloadTimeoutSeconds = 90
	defaultArrTimeoutSeconds        = 15
	defaultDeleteSpacingSeconds     = 2
	defaultExtraContainerExt        = ".ts"
	defaultVideoHeightMultiplier    = 2
	defaultVideoBitrateMultiplier   = 2
)

// Default returns a Config populated with repository defaults. The codec and
// resolution tables mirror the scores the project has shipped with
// historically; entry order is significant because lookups stop at the first
// match.
func Default() Config {
	return Config{
		Runtime: Runtime{
			SkipVersionsFolder:   true,
			ExtraContainerExt:    defaultExtraContainerExt,
			DeleteSpacingSeconds: defaultDeleteSpacingSeconds,
			LogDir:               defaultLogDir,
		},
		Plex: Plex{
			Libraries:            []string{"Movies", "TV"},
			TimeoutSeconds:       defaultPlexTimeoutSeconds,
			ReloadTimeoutSeconds: defaultPlexReloadTimeoutSeconds,
		},
		Radarr: Arr{
			TimeoutSeconds: defaultArrTimeoutSeconds,
		},
		Sonarr: Arr{
			TimeoutSeconds: defaultArrTimeoutSeconds,
		},
		Scoring: Scoring{
			VideoHeightMultiplier: defaultVideoHeightMultiplier,
			ScoreFileSize:         true,
			ScoreAudioChannels:    true,
			VideoBitrate: VideoBitrate{
				Enabled:    true,
				Multiplier: defaultVideoBitrateMultiplier,
			},
		},
		Scores: Scores{
			AudioCodec: []WeightEntry{
				{Name: "Unknown", Weight: 0},
				{Name: "wmapro", Weight: 200},
				{Name: "mp2", Weight: 500},
				{Name: "mp3", Weight: 1000},
				{Name: "ac3", Weight: 1000},
				{Name: "dca", Weight: 2000},
				{Name: "pcm", Weight: 2500},
				{Name: "flac", Weight: 2500},
				{Name: "dca-ma", Weight: 4000},
				{Name: "truehd", Weight: 4500},
				{Name: "aac", Weight: 1000},
				{Name: "eac3", Weight: 1250},
			},
			VideoCodec: []WeightEntry{
				{Name: "Unknown", Weight: 0},
				{Name: "h264", Weight: 10000},
				{Name: "h265", Weight: 5000},
				{Name: "hevc", Weight: 5000},
				{Name: "mpeg4", Weight: 500},
				{Name: "vc1", Weight: 3000},
				{Name: "vp9", Weight: 1000},
				{Name: "mpeg1video", Weight: 250},
				{Name: "mpeg2video", Weight: 250},
				{Name: "wmv2", Weight: 250},
				{Name: "wmv3", Weight: 250},
				{Name: "msmpeg4", Weight: 100},
				{Name: "msmpeg4v2", Weight: 100},
				{Name: "msmpeg4v3", Weight: 100},
			},
			VideoResolution: []WeightEntry{
				{Name: "Unknown", Weight: 0},
				{Name: "4k", Weight: 20000},
				{Name: "1080", Weight: 10000},
				{Name: "720", Weight: 5000},
				{Name: "480", Weight: 3000},
				{Name: "sd", Weight: 1000},
			},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
