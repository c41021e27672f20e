package manifest_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"curator/internal/manifest"
)

func openStore(t *testing.T) *manifest.Store {
	t.Helper()
	store, err := manifest.OpenPath(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginAndFinishRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run id assigned")
	}

	summary := manifest.Summary{Total: 3, Movies: 1, TV: 1, Unresolved: 1, CatalogCalls: 9}
	if err := store.FinishRun(ctx, run.ID, summary); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}

	latest, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun returned error: %v", err)
	}
	if latest == nil || latest.ID != run.ID {
		t.Fatalf("unexpected latest run: %+v", latest)
	}
	if !latest.Finished() {
		t.Fatal("expected finished run")
	}
	if latest.Summary != summary {
		t.Fatalf("unexpected summary: %+v", latest.Summary)
	}
	if latest.Summary.Resolved() != 2 {
		t.Fatalf("unexpected resolved count: %d", latest.Summary.Resolved())
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openStore(t)
	if err := store.FinishRun(context.Background(), "missing", manifest.Summary{}); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestAddAndListRecords(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}

	records := []*manifest.Record{
		{RunID: run.ID, Source: "matrix.mkv", Kind: "movie", Title: "The Matrix", Year: 1999, Score: 100, CatalogID: 603, Queried: 2},
		{RunID: run.ID, Source: "wire.mkv", Kind: "tv", Title: "The Wire", Year: 2002, Season: 3, Episode: 8},
		{RunID: run.ID, Source: "garbage.mkv", Kind: "unresolved"},
	}
	for _, record := range records {
		if err := store.AddRecord(ctx, record); err != nil {
			t.Fatalf("AddRecord returned error: %v", err)
		}
		if record.ID == 0 {
			t.Fatal("expected record id assigned")
		}
	}

	all, err := store.RecordsForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("RecordsForRun returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unexpected record count: %d", len(all))
	}
	if all[0].Source != "matrix.mkv" || all[2].Kind != "unresolved" {
		t.Fatalf("unexpected ordering: %+v", all)
	}
	if all[1].Season != 3 || all[1].Episode != 8 {
		t.Fatalf("episode fields lost: %+v", all[1])
	}

	unresolved, err := store.RecordsForRun(ctx, run.ID, "unresolved")
	if err != nil {
		t.Fatalf("RecordsForRun with filter returned error: %v", err)
	}
	if len(unresolved) != 1 || unresolved[0].Source != "garbage.mkv" {
		t.Fatalf("unexpected filtered records: %+v", unresolved)
	}
}

func TestRunsNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	var last string
	for i := 0; i < 3; i++ {
		run, err := store.BeginRun(ctx)
		if err != nil {
			t.Fatalf("BeginRun returned error: %v", err)
		}
		last = run.ID
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.Runs(ctx, 2)
	if err != nil {
		t.Fatalf("Runs returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("unexpected run count: %d", len(runs))
	}
	if runs[0].ID != last {
		t.Fatalf("expected newest run first, got %s", runs[0].ID)
	}
}

func TestLatestRunEmpty(t *testing.T) {
	store := openStore(t)
	run, err := store.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun returned error: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil run, got %+v", run)
	}
}

func TestPruneRunsCascades(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if err := store.AddRecord(ctx, &manifest.Record{RunID: run.ID, Source: "old.mkv", Kind: "movie"}); err != nil {
		t.Fatalf("AddRecord returned error: %v", err)
	}

	pruned, err := store.PruneRuns(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneRuns returned error: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected one pruned run, got %d", pruned)
	}
	records, err := store.RecordsForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("RecordsForRun returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected cascade delete, got %+v", records)
	}
}
