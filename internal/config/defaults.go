package config

const (
	defaultIncomingDir         = "~/incoming"
	defaultLibraryDir          = "~/library"
	defaultLogDir              = "~/.local/share/curator/logs"
	defaultManifestDB          = "~/.local/share/curator/manifest.db"
	defaultMoviesDir           = "movies"
	defaultTVDir               = "tv"
	defaultMoviesKidsDir       = "movies_kids"
	defaultTVKidsDir           = "tv_kids"
	defaultUnsortedDir         = "unsorted"
	defaultTMDBLanguage        = "es-ES"
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultTMDBTimeoutSeconds  = 10
	defaultFuzzyThreshold      = 80
	defaultItemCallLimit       = 12
	defaultRunCallLimit        = 200
	defaultKidsMaxAge          = 7
	defaultStableSeconds       = 30
	defaultPollIntervalSeconds = 5
	defaultIngestWorkers       = 4
	defaultPlexTimeoutSeconds  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

func defaultKidsGenres() []string {
	return []string{"animation", "family"}
}

func defaultAllowedExtensions() []string {
	return []string{".mkv", ".mp4", ".avi", ".m4v", ".mov", ".ts", ".wmv"}
}

func defaultSidecarExtensions() []string {
	return []string{".srt", ".sub", ".idx", ".nfo", ".jpg", ".png"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IncomingDir:   defaultIncomingDir,
			LibraryDir:    defaultLibraryDir,
			MoviesDir:     defaultMoviesDir,
			TVDir:         defaultTVDir,
			MoviesKidsDir: defaultMoviesKidsDir,
			TVKidsDir:     defaultTVKidsDir,
			LogDir:        defaultLogDir,
			ManifestDB:    defaultManifestDB,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			Language:       defaultTMDBLanguage,
			FuzzyThreshold: defaultFuzzyThreshold,
			ItemCallLimit:  defaultItemCallLimit,
			RunCallLimit:   defaultRunCallLimit,
			TimeoutSeconds: defaultTMDBTimeoutSeconds,
			AdultRetry:     true,
		},
		Kids: Kids{
			MaxAge:          defaultKidsMaxAge,
			RequireGenreAny: defaultKidsGenres(),
		},
		Ingest: Ingest{
			AllowedExtensions:   defaultAllowedExtensions(),
			SidecarExtensions:   defaultSidecarExtensions(),
			StableSeconds:       defaultStableSeconds,
			PollIntervalSeconds: defaultPollIntervalSeconds,
			Workers:             defaultIngestWorkers,
		},
		Plex: Plex{
			TimeoutSeconds: defaultPlexTimeoutSeconds,
			RefreshPerPath: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
