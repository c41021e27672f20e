package rescue

import (
	"context"
	"log/slog"

	"curator/internal/catalog"
	"curator/internal/classify"
	"curator/internal/logging"
	"curator/internal/matcher"
	"curator/internal/normalize"
	"curator/internal/querygen"
	"curator/internal/services"
)

// Item is an unresolved snapshot entry carried over from the main pass.
// Budget is the same per-item view the main pass used, so the cumulative
// call ceiling holds across both passes.
type Item struct {
	Name     string
	Cleaned  normalize.Result
	Hints    normalize.Hints
	YearHint int
	Budget   *catalog.ItemBudget
}

// Outcome pairs one replayed item with its new terminal classification.
type Outcome struct {
	Name   string
	Match  matcher.Decision
	Result classify.Result
}

// Engine replays unresolved items once with the rescue candidate set.
type Engine struct {
	matcher *matcher.Matcher
	policy  classify.Policy
	logger  *slog.Logger
}

// New builds an Engine sharing the main pass's matcher and policy.
func New(m *matcher.Matcher, policy classify.Policy, logger *slog.Logger) *Engine {
	return &Engine{
		matcher: m,
		policy:  policy,
		logger:  logging.NewComponentLogger(logger, "rescue"),
	}
}

// Replay runs each snapshot item through the rescue candidate set, capped
// at the tighter executed-candidate limit. It consumes the snapshot only;
// items resolved in the main pass are never touched. Outcomes keep the
// input order. On cancellation the outcomes completed so far are returned
// alongside the context error.
func (e *Engine) Replay(ctx context.Context, items []Item) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return outcomes, services.Wrap(services.ErrTransient, "rescue", "replay", "replay interrupted", err)
		}

		itemCtx := services.WithItemName(ctx, item.Name)
		log := logging.WithContext(itemCtx, e.logger)

		candidates := querygen.BuildRescue(item.Cleaned, item.Hints, item.YearHint)
		if len(candidates) > querygen.RescueExecuteCap {
			candidates = candidates[:querygen.RescueExecuteCap]
		}
		if len(candidates) == 0 {
			log.Debug("no rescue candidates")
			outcomes = append(outcomes, Outcome{
				Name:   item.Name,
				Result: classify.Result{Kind: classify.KindUnresolved},
			})
			continue
		}

		match, err := e.matcher.Match(itemCtx, candidates, item.Hints, item.YearHint, item.Budget)
		if err != nil {
			return outcomes, err
		}
		result := classify.Decide(match, item.Hints, e.policy)
		if result.Kind.Resolved() {
			log.Info("rescued",
				logging.String("title", result.Title),
				logging.String(logging.FieldDecision, string(result.Kind)),
				logging.Int(logging.FieldScore, result.Score))
		} else {
			log.Debug("still unresolved after rescue",
				logging.Int(logging.FieldScore, match.Score))
		}
		outcomes = append(outcomes, Outcome{Name: item.Name, Match: match, Result: result})
	}
	return outcomes, nil
}
