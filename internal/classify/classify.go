package classify

import (
	"strings"

	"curator/internal/catalog"
	"curator/internal/matcher"
	"curator/internal/normalize"
)

// Kind is the terminal routing class of an item.
type Kind string

const (
	KindMovie      Kind = "movie"
	KindMovieKids  Kind = "movie_kids"
	KindTV         Kind = "tv"
	KindTVKids     Kind = "tv_kids"
	KindUnresolved Kind = "unresolved"
)

// Resolved reports whether the kind names a library destination.
func (k Kind) Resolved() bool {
	return k != KindUnresolved && k != ""
}

// IsTV reports whether the kind routes into a series tree.
func (k Kind) IsTV() bool {
	return k == KindTV || k == KindTVKids
}

// Policy holds the classification knobs.
type Policy struct {
	// Threshold is the base fuzzy acceptance score; the media-type
	// override guard uses Threshold+10.
	Threshold int
	// MaxAge is the certification-age ceiling for kids routing.
	MaxAge int
	// RequireGenreAny lists genres of which at least one must be present
	// for kids routing.
	RequireGenreAny []string
	// BlacklistKeywords excludes titles from kids routing on a
	// case-insensitive substring match.
	BlacklistKeywords []string
}

// Result is the terminal output for one item. Title and Year come verbatim
// from the accepted catalog record, never from the filename.
type Result struct {
	Kind       Kind
	Title      string
	Year       int
	Score      int
	CatalogID  int64
	Season     int
	Episode    int
	HasEpisode bool
}

// Decide maps an accepted (or absent) match plus structural hints to a
// terminal classification. It is a pure function: same inputs, same result.
func Decide(match matcher.Decision, hints normalize.Hints, policy Policy) Result {
	if !match.Accepted() {
		return Result{Kind: KindUnresolved, Score: match.Score}
	}
	if policy.Threshold <= 0 {
		policy.Threshold = 80
	}

	mediaType := guardedMediaType(match, hints, policy.Threshold)

	kind := KindMovie
	if mediaType == catalog.MediaTV {
		kind = KindTV
	}
	if isKids(match, policy) {
		if kind == KindTV {
			kind = KindTVKids
		} else {
			kind = KindMovieKids
		}
	}

	result := Result{
		Kind:      kind,
		Title:     match.Title,
		Year:      match.Year,
		Score:     match.Score,
		CatalogID: match.CatalogID,
	}
	if kind.IsTV() && hints.HasEpisode {
		result.Season = hints.Season
		result.Episode = hints.Episode
		result.HasEpisode = true
	}
	return result
}

// guardedMediaType accepts the catalog's media type only when the filename
// structurally agrees or the score clears the strict bar. Otherwise the
// structural evidence wins, so one ambiguous high-popularity hit cannot
// flip an obvious movie into a series or the reverse.
func guardedMediaType(match matcher.Decision, hints normalize.Hints, threshold int) catalog.MediaType {
	structural := catalog.MediaMovie
	if hints.TVMarkers {
		structural = catalog.MediaTV
	}
	if match.MediaType == structural {
		return match.MediaType
	}
	if match.Score > threshold+10 {
		return match.MediaType
	}
	return structural
}

// isKids applies the restrictive-shelf rule. Missing certification or
// genre data fails toward false: mis-sorting into the default shelf is
// recoverable, mis-sorting into the kids shelf is not acceptable.
func isKids(match matcher.Decision, policy Policy) bool {
	if !match.HasCert || match.CertAge > policy.MaxAge {
		return false
	}
	if len(match.Genres) == 0 || !intersects(match.Genres, policy.RequireGenreAny) {
		return false
	}
	title := strings.ToLower(match.Title)
	for _, keyword := range policy.BlacklistKeywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(title, keyword) {
			return false
		}
	}
	return true
}

func intersects(genres, required []string) bool {
	if len(required) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		set[strings.ToLower(strings.TrimSpace(g))] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[strings.ToLower(strings.TrimSpace(r))]; ok {
			return true
		}
	}
	return false
}
