package matcher

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"curator/internal/catalog"
	"curator/internal/logging"
	"curator/internal/normalize"
	"curator/internal/querygen"
	"curator/internal/services"
	"curator/internal/textutil"
)

const (
	// scoreFloor discards results outright regardless of other rules.
	scoreFloor = 60
	// noisyTitlePenalty is deducted when a catalog title still carries
	// release tokens after its own normalization. A deduction, not a
	// reject, so a dominant noisy match can still beat a weak clean one.
	noisyTitlePenalty = 15
	// strictBar is the extra threshold applied to single-word and very
	// short candidates, and to high-drift year matches.
	strictBar = 10
	// driftScoreBar lets a match survive a >1 year drift from the hint
	// only when similarity is nearly exact.
	driftScoreBar = 90
)

// Config tunes acceptance behavior.
type Config struct {
	// Threshold is the base fuzzy acceptance score (0-100).
	Threshold int
	// AdultRetry enables one extra retry round with adult results included.
	AdultRetry bool
}

// Decision is the sole matcher output consumed by classification.
// MediaType is empty when nothing was accepted; Score then holds the best
// rejected score seen, for reporting.
type Decision struct {
	MediaType catalog.MediaType
	Title     string
	Year      int
	Score     int
	CatalogID int64
	CertAge   int
	HasCert   bool
	Genres    []string
	Bucket    querygen.Bucket
	Queried   int
}

// Accepted reports whether the decision carries an accepted match.
func (d Decision) Accepted() bool {
	return d.MediaType != ""
}

// Matcher executes candidate queries against the catalog under budget
// discipline and structural guards.
type Matcher struct {
	provider catalog.Provider
	cfg      Config
	logger   *slog.Logger
}

// New builds a Matcher. A nil logger is replaced with a no-op logger.
func New(provider catalog.Provider, cfg Config, logger *slog.Logger) *Matcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 80
	}
	return &Matcher{
		provider: provider,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "matcher"),
	}
}

// Match runs the candidates in priority order until one clears its
// acceptance bar, the budget runs out, or the list is exhausted. The first
// clearing candidate wins; ties break by bucket priority, never by score.
func (m *Matcher) Match(ctx context.Context, candidates []querygen.Candidate, hints normalize.Hints, yearHint int, budget *catalog.ItemBudget) (Decision, error) {
	log := logging.WithContext(ctx, m.logger)

	if decision, done, err := m.matchByIMDbID(ctx, hints, budget); done || err != nil {
		return decision, err
	}

	var mediaHint catalog.MediaType
	if hints.TVMarkers {
		mediaHint = catalog.MediaTV
	}

	rounds := []bool{false}
	if m.cfg.AdultRetry {
		rounds = append(rounds, true)
	}

	bestRejected := 0
	for _, includeAdult := range rounds {
		for _, cand := range candidates {
			if err := ctx.Err(); err != nil {
				return Decision{}, err
			}
			if err := budget.Acquire(); err != nil {
				log.Debug("budget exhausted mid-item",
					logging.String(logging.FieldCandidate, cand.Text),
					logging.Int("best_rejected", bestRejected))
				return Decision{Score: bestRejected, Queried: budget.Used()}, nil
			}

			results, err := m.provider.Search(ctx, cand.Text, catalog.SearchOptions{
				MediaTypeHint: mediaHint,
				Year:          cand.Year,
				IncludeAdult:  includeAdult,
			})
			if err != nil {
				// Transport failures read as empty result sets; the
				// call still counted against the budget.
				if !services.IsTransport(err) && ctx.Err() != nil {
					return Decision{}, ctx.Err()
				}
				log.Debug("search failed, treating as empty",
					logging.String(logging.FieldCandidate, cand.Text),
					logging.Error(err))
				continue
			}

			accepted, best := m.scoreResults(cand, results, hints, yearHint)
			if best > bestRejected {
				bestRejected = best
			}
			if accepted == nil {
				continue
			}

			decision := Decision{
				MediaType: accepted.result.MediaType,
				Title:     accepted.result.Title,
				Year:      accepted.result.Year,
				Score:     accepted.score,
				CatalogID: accepted.result.ID,
				Bucket:    cand.Bucket,
			}
			m.enrich(ctx, &decision, budget)
			decision.Queried = budget.Used()
			log.Info("candidate accepted",
				logging.String(logging.FieldCandidate, cand.Text),
				logging.String("bucket", string(cand.Bucket)),
				logging.Int(logging.FieldScore, decision.Score),
				logging.String("title", decision.Title))
			return decision, nil
		}
	}

	return Decision{Score: bestRejected, Queried: budget.Used()}, nil
}

// matchByIMDbID short-circuits when the raw name embedded an IMDb id.
// done is true when the caller should return the decision as-is.
func (m *Matcher) matchByIMDbID(ctx context.Context, hints normalize.Hints, budget *catalog.ItemBudget) (Decision, bool, error) {
	if hints.IMDbID == "" {
		return Decision{}, false, nil
	}
	if err := budget.Acquire(); err != nil {
		return Decision{Queried: budget.Used()}, true, nil
	}
	result, err := m.provider.FindByIMDbID(ctx, hints.IMDbID)
	if err != nil {
		if ctx.Err() != nil {
			return Decision{}, true, ctx.Err()
		}
		// Fall through to the candidate loop on any lookup failure.
		return Decision{}, false, nil
	}
	decision := Decision{
		MediaType: result.MediaType,
		Title:     result.Title,
		Year:      result.Year,
		Score:     100,
		CatalogID: result.ID,
	}
	m.enrich(ctx, &decision, budget)
	decision.Queried = budget.Used()
	return decision, true, nil
}

type scored struct {
	result catalog.Result
	score  int
}

// scoreResults applies the guard cascade to one candidate's results and
// returns the accepted result (nil if none) plus the best score seen.
func (m *Matcher) scoreResults(cand querygen.Candidate, results []catalog.Result, hints normalize.Hints, yearHint int) (*scored, int) {
	required := m.cfg.Threshold
	if isShortCandidate(cand.Text) {
		required += strictBar
	}

	var accepted *scored
	best := 0
	for _, result := range results {
		if strings.TrimSpace(result.Title) == "" {
			// Provider data error: discard this result, keep going.
			continue
		}
		// A bare person-name result never matches a title query unless the
		// query itself reads as a person name (biopics searched by name).
		if textutil.IsPersonLike(result.Title) && !textutil.IsPersonLike(cand.Text) {
			continue
		}
		score := textutil.TokenSetRatio(
			textutil.CleanForScore(cand.Text),
			textutil.CleanForScore(result.Title),
		)

		// Hard year guards run before any threshold comparison.
		if result.Year != 0 && !hints.AllowsYear(result.Year) {
			continue
		}
		if len(hints.Years) == 0 && yearHint > 0 && result.Year != 0 {
			drift := result.Year - yearHint
			if drift < 0 {
				drift = -drift
			}
			if drift > 1 && score < driftScoreBar {
				continue
			}
		}

		if textutil.HasReleaseTokens(result.Title) {
			score -= noisyTitlePenalty
		}
		if score < scoreFloor {
			continue
		}
		if score > best {
			best = score
		}
		if score >= required && (accepted == nil || score > accepted.score) {
			accepted = &scored{result: result, score: score}
		}
	}
	return accepted, best
}

// enrich fetches certification and genres for an accepted result only,
// and recovers an en-US title when the accepted one is mostly non-Latin.
// Budget exhaustion or fetch failure leaves the fields unset; kids routing
// then fails safe toward the default sections.
func (m *Matcher) enrich(ctx context.Context, decision *Decision, budget *catalog.ItemBudget) {
	if textutil.MostlyNonLatin(decision.Title, 0) && budget.Acquire() == nil {
		if title, err := m.provider.FetchEnglishTitle(ctx, decision.MediaType, decision.CatalogID); err == nil && title != "" {
			decision.Title = title
		}
	}
	if budget.Acquire() == nil {
		if age, ok, err := m.provider.FetchCertification(ctx, decision.MediaType, decision.CatalogID); err == nil && ok {
			decision.CertAge = age
			decision.HasCert = true
		}
	}
	if budget.Acquire() == nil {
		if genres, err := m.provider.FetchGenres(ctx, decision.MediaType, decision.CatalogID); err == nil {
			decision.Genres = genres
		}
	}
}

func isShortCandidate(text string) bool {
	return len(strings.Fields(text)) <= 1 || utf8.RuneCountInString(text) < 4
}
