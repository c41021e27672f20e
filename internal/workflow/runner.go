package workflow

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"curator/internal/catalog"
	"curator/internal/classify"
	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/manifest"
	"curator/internal/matcher"
	"curator/internal/normalize"
	"curator/internal/organizer"
	"curator/internal/querygen"
	"curator/internal/rescue"
	"curator/internal/services"
	"curator/internal/services/plex"
)

// Runner executes ingestion runs: normalize, match, classify, rescue,
// place, refresh, record.
type Runner struct {
	cfg       *config.Config
	provider  catalog.Provider
	store     *manifest.Store
	matcher   *matcher.Matcher
	engine    *rescue.Engine
	organizer *organizer.Organizer
	plex      *plex.Client
	logger    *slog.Logger
}

// NewRunner wires the pipeline stages together. store may be nil for dry
// runs that should not persist a manifest.
func NewRunner(cfg *config.Config, provider catalog.Provider, store *manifest.Store, logger *slog.Logger) *Runner {
	policy := classify.Policy{
		Threshold:         cfg.TMDB.FuzzyThreshold,
		MaxAge:            cfg.Kids.MaxAge,
		RequireGenreAny:   cfg.Kids.RequireGenreAny,
		BlacklistKeywords: cfg.Kids.BlacklistKeywords,
	}
	m := matcher.New(provider, matcher.Config{
		Threshold:  cfg.TMDB.FuzzyThreshold,
		AdultRetry: cfg.TMDB.AdultRetry,
	}, logger)
	return &Runner{
		cfg:       cfg,
		provider:  provider,
		store:     store,
		matcher:   m,
		engine:    rescue.New(m, policy, logger),
		organizer: organizer.New(cfg, logger),
		plex:      plex.NewClient(cfg, logger),
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}
}

// itemState carries one file through both passes.
type itemState struct {
	source  string
	cleaned normalize.Result
	hints   normalize.Hints
	match   matcher.Decision
	result  classify.Result
	budget  *catalog.ItemBudget
	rescued bool
}

// RunOnce processes every eligible file currently in the incoming
// directory and returns the finished run summary.
func (r *Runner) RunOnce(ctx context.Context) (manifest.Summary, error) {
	files, err := ListIncoming(r.cfg)
	if err != nil {
		return manifest.Summary{}, err
	}
	return r.Process(ctx, files)
}

// Process runs the full pipeline over the given files: a concurrent main
// pass, one rescue replay over the unresolved remainder, then placement
// and manifest recording. Files not yet classified when the context is
// canceled are left untouched in the incoming directory.
func (r *Runner) Process(ctx context.Context, files []string) (manifest.Summary, error) {
	var runID string
	if r.store != nil {
		run, err := r.store.BeginRun(ctx)
		if err != nil {
			return manifest.Summary{}, err
		}
		runID = run.ID
		ctx = services.WithRunID(ctx, runID)
	}
	log := logging.WithContext(ctx, r.logger)
	log.Info("run started", logging.Int("files", len(files)))

	budget := catalog.NewBudget(r.cfg.TMDB.RunCallLimit, r.cfg.TMDB.ItemCallLimit)
	states := r.mainPass(ctx, files, budget)

	if err := ctx.Err(); err == nil {
		r.rescuePass(ctx, states)
	}

	summary := r.finishPass(ctx, runID, states, budget)
	if r.store != nil && runID != "" {
		// Close the run even when the context was canceled mid-pass so the
		// manifest never accumulates open runs.
		if err := r.store.FinishRun(context.WithoutCancel(ctx), runID, summary); err != nil {
			log.Error("failed to finish manifest run", logging.Error(err))
		}
	}
	log.Info("run finished",
		logging.Int("total", summary.Total),
		logging.Int("resolved", summary.Resolved()),
		logging.Int("unresolved", summary.Unresolved),
		logging.Int("rescued", summary.Rescued),
		logging.Int("catalog_calls", summary.CatalogCalls))
	return summary, ctx.Err()
}

// mainPass classifies files concurrently. Each worker owns its item state
// exclusively; only the call budget is shared.
func (r *Runner) mainPass(ctx context.Context, files []string, budget *catalog.Budget) []*itemState {
	workers := r.cfg.Ingest.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	states := make([]*itemState, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				states[idx] = r.classifyFile(ctx, files[idx], budget.Item())
			}
		}()
	}

feed:
	for idx := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	// Drop slots never picked up before cancellation.
	out := make([]*itemState, 0, len(states))
	for _, state := range states {
		if state != nil {
			out = append(out, state)
		}
	}
	return out
}

// classifyFile runs one file through normalize, query building, matching,
// and classification. It never returns nil; failures classify as
// unresolved.
func (r *Runner) classifyFile(ctx context.Context, path string, budget *catalog.ItemBudget) *itemState {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ctx = services.WithStage(services.WithItemName(ctx, name), "classify")
	log := logging.WithContext(ctx, r.logger)

	state := &itemState{
		source:  path,
		cleaned: normalize.Clean(name),
		hints:   normalize.HintsFor(name),
		budget:  budget,
	}

	candidates := querygen.Build(state.cleaned, state.hints, 0)
	if len(candidates) == 0 {
		log.Debug("no usable candidates")
		state.result = classify.Result{Kind: classify.KindUnresolved}
		return state
	}

	match, err := r.matcher.Match(ctx, candidates, state.hints, 0, budget)
	if err != nil {
		// Canceled mid-item: report unresolved without placement; the
		// finish pass skips canceled contexts entirely.
		state.result = classify.Result{Kind: classify.KindUnresolved}
		return state
	}
	state.match = match
	state.result = classify.Decide(match, state.hints, r.policy())
	log.Info("classified",
		logging.String(logging.FieldDecision, string(state.result.Kind)),
		logging.Int(logging.FieldScore, state.result.Score))
	return state
}

// rescuePass replays the unresolved snapshot once, in place.
func (r *Runner) rescuePass(ctx context.Context, states []*itemState) {
	var snapshot []rescue.Item
	var pending []*itemState
	for _, state := range states {
		if state.result.Kind != classify.KindUnresolved {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(state.source), filepath.Ext(state.source))
		snapshot = append(snapshot, rescue.Item{
			Name:    name,
			Cleaned: state.cleaned,
			Hints:   state.hints,
			Budget:  state.budget,
		})
		pending = append(pending, state)
	}
	if len(snapshot) == 0 {
		return
	}

	outcomes, err := r.engine.Replay(services.WithStage(ctx, "rescue"), snapshot)
	if err != nil {
		logging.WithContext(ctx, r.logger).Warn("rescue replay interrupted", logging.Error(err))
	}
	for i, outcome := range outcomes {
		if !outcome.Result.Kind.Resolved() {
			continue
		}
		pending[i].match = outcome.Match
		pending[i].result = outcome.Result
		pending[i].rescued = true
	}
}

// finishPass places every classified file and records outcomes.
func (r *Runner) finishPass(ctx context.Context, runID string, states []*itemState, budget *catalog.Budget) manifest.Summary {
	log := logging.WithContext(ctx, r.logger)
	summary := manifest.Summary{
		CatalogCalls: r.cfg.TMDB.RunCallLimit - budget.Remaining(),
	}

	for _, state := range states {
		if ctx.Err() != nil {
			break
		}
		summary.Total++
		switch state.result.Kind {
		case classify.KindMovie:
			summary.Movies++
		case classify.KindMovieKids:
			summary.MovieKids++
		case classify.KindTV:
			summary.TV++
		case classify.KindTVKids:
			summary.TVKids++
		default:
			summary.Unresolved++
		}
		if state.rescued {
			summary.Rescued++
		}

		itemCtx := services.WithStage(services.WithItemName(ctx, filepath.Base(state.source)), "organize")
		finalPath, err := r.organizer.Place(itemCtx, state.source, state.result)
		if err != nil {
			log.Error("placement failed",
				logging.String("source", state.source),
				logging.Error(err))
		} else if state.result.Kind.Resolved() {
			if err := r.plex.Refresh(itemCtx, state.result.Kind, filepath.Dir(finalPath)); err != nil {
				log.Warn("plex refresh failed", logging.Error(err))
			}
		}

		if r.store != nil && runID != "" {
			record := &manifest.Record{
				RunID:     runID,
				Source:    state.source,
				Kind:      string(state.result.Kind),
				Title:     state.result.Title,
				Year:      state.result.Year,
				Score:     state.result.Score,
				CatalogID: state.result.CatalogID,
				Season:    state.result.Season,
				Episode:   state.result.Episode,
				Rescued:   state.rescued,
				FinalPath: finalPath,
				Queried:   state.budget.Used(),
			}
			if err := r.store.AddRecord(ctx, record); err != nil {
				log.Error("failed to record outcome", logging.Error(err))
			}
		}
	}
	return summary
}

// Classify runs the match pipeline for a single name without touching
// files, the manifest, or Plex. Used by the dry-run CLI command. yearHint
// supplies a production year when the name carries none; tvHint forces
// series treatment for names without episode markers.
func (r *Runner) Classify(ctx context.Context, name string, yearHint int, tvHint bool) (classify.Result, matcher.Decision, error) {
	hints := normalize.HintsFor(name)
	if tvHint {
		hints.TVMarkers = true
	}
	cleaned := normalize.Clean(name)
	budget := catalog.NewBudget(r.cfg.TMDB.ItemCallLimit, r.cfg.TMDB.ItemCallLimit)
	item := budget.Item()

	candidates := querygen.Build(cleaned, hints, yearHint)
	if len(candidates) == 0 {
		return classify.Result{Kind: classify.KindUnresolved}, matcher.Decision{}, nil
	}
	match, err := r.matcher.Match(ctx, candidates, hints, yearHint, item)
	if err != nil {
		return classify.Result{}, matcher.Decision{}, err
	}
	result := classify.Decide(match, hints, r.policy())
	if result.Kind == classify.KindUnresolved {
		rescueCandidates := querygen.BuildRescue(cleaned, hints, yearHint)
		if len(rescueCandidates) > querygen.RescueExecuteCap {
			rescueCandidates = rescueCandidates[:querygen.RescueExecuteCap]
		}
		if len(rescueCandidates) > 0 {
			if rescueMatch, err := r.matcher.Match(ctx, rescueCandidates, hints, yearHint, item); err == nil {
				if rescued := classify.Decide(rescueMatch, hints, r.policy()); rescued.Kind.Resolved() {
					return rescued, rescueMatch, nil
				}
			}
		}
	}
	return result, match, nil
}

func (r *Runner) policy() classify.Policy {
	return classify.Policy{
		Threshold:         r.cfg.TMDB.FuzzyThreshold,
		MaxAge:            r.cfg.Kids.MaxAge,
		RequireGenreAny:   r.cfg.Kids.RequireGenreAny,
		BlacklistKeywords: r.cfg.Kids.BlacklistKeywords,
	}
}

// ListIncoming walks the incoming directory for files with allowed
// extensions, sorted for deterministic processing.
func ListIncoming(cfg *config.Config) ([]string, error) {
	allowed := make(map[string]struct{}, len(cfg.Ingest.AllowedExtensions))
	for _, ext := range cfg.Ingest.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	var files []string
	err := filepath.WalkDir(cfg.Paths.IncomingDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "workflow", "scan", "walk incoming directory", err)
	}
	sort.Strings(files)
	return files, nil
}
