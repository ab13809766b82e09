package arr

import (
	"context"
	"log/slog"
	"path"

	"dupefinder/internal/config"
	"dupefinder/internal/logging"
	"dupefinder/internal/media"
)

// Authority is the lookup surface the resolver needs from a client.
type Authority interface {
	PreferredFile(ctx context.Context, externalID int64) (string, error)
}

// Resolver translates authority answers into candidate overrides.
type Resolver struct {
	movies        Authority
	series        Authority
	moviesEnabled bool
	seriesEnabled bool
	logger        *slog.Logger
}

// NewResolver builds a resolver from configuration. Either authority may be
// disabled; a fully disabled resolver always reports no override.
func NewResolver(cfg *config.Config, logger *slog.Logger) *Resolver {
	r := &Resolver{
		moviesEnabled: cfg.Radarr.Enabled,
		seriesEnabled: cfg.Sonarr.Enabled,
		logger:        logging.NewComponentLogger(logger, "arr"),
	}
	if cfg.Radarr.Enabled {
		r.movies = NewRadarr(cfg.Radarr)
	}
	if cfg.Sonarr.Enabled {
		r.series = NewSonarr(cfg.Sonarr)
	}
	return r
}

// NewResolverWith wires explicit authorities, for tests.
func NewResolverWith(movies, series Authority, logger *slog.Logger) *Resolver {
	return &Resolver{
		movies:        movies,
		series:        series,
		moviesEnabled: movies != nil,
		seriesEnabled: series != nil,
		logger:        logging.NewComponentLogger(logger, "arr"),
	}
}

// Override walks the group in order and returns the id of the first
// candidate whose first path basename matches the authority's preferred
// file. Zero and false mean no override; lookup failures are logged and
// treated the same way.
func (r *Resolver) Override(ctx context.Context, group *media.Group) (int64, bool) {
	for _, c := range group.Candidates {
		var (
			authority Authority
			id        int64
		)
		switch {
		case c.Kind == media.KindMovie && r.moviesEnabled && c.TMDBID != 0:
			authority, id = r.movies, c.TMDBID
		case c.Kind == media.KindEpisode && r.seriesEnabled && c.TVDBID != 0:
			authority, id = r.series, c.TVDBID
		default:
			continue
		}

		preferred, err := authority.PreferredFile(ctx, id)
		if err != nil {
			r.logger.Warn("authority lookup failed",
				logging.Int64(logging.FieldMediaID, c.ID),
				logging.Error(err))
			continue
		}
		if preferred == "" || len(c.Files) == 0 {
			continue
		}
		if path.Base(c.Files[0]) == preferred {
			r.logger.Info("authority override matched",
				logging.Int64(logging.FieldMediaID, c.ID),
				logging.String("file", preferred))
			return c.ID, true
		}
	}
	return 0, false
}
