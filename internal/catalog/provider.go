package catalog

import "context"

// MediaType distinguishes movie and TV catalog records.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Result is a single catalog record. All text is untrusted provider data.
type Result struct {
	ID         int64
	MediaType  MediaType
	Title      string
	Year       int
	Overview   string
	Popularity float64
	Adult      bool
}

// SearchOptions narrows a catalog search.
type SearchOptions struct {
	// MediaTypeHint limits the search to one media type; empty searches both.
	MediaTypeHint MediaType
	// Year filters by release/first-air year when positive.
	Year int
	// IncludeAdult asks the provider not to filter adult records.
	IncludeAdult bool
}

// Provider is the external metadata catalog contract. Implementations must
// be idempotent and safely retryable; callers treat transport failures as
// empty result sets.
type Provider interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error)
	FetchCertification(ctx context.Context, mediaType MediaType, id int64) (age int, ok bool, err error)
	FetchGenres(ctx context.Context, mediaType MediaType, id int64) ([]string, error)
	// FetchEnglishTitle returns the en-US title for a record, used to
	// recover a readable name when the localized title is non-Latin.
	FetchEnglishTitle(ctx context.Context, mediaType MediaType, id int64) (string, error)
	FindByIMDbID(ctx context.Context, imdbID string) (*Result, error)
}
