package manifest

import "time"

// Run is one ingestion pass over the incoming directory.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    Summary
}

// Finished reports whether the run was closed out.
func (r *Run) Finished() bool {
	return r != nil && r.FinishedAt != nil
}

// Summary aggregates per-run outcome counts.
type Summary struct {
	Total        int
	Movies       int
	MovieKids    int
	TV           int
	TVKids       int
	Unresolved   int
	Rescued      int
	CatalogCalls int
}

// Resolved returns the number of items routed into the library.
func (s Summary) Resolved() int {
	return s.Movies + s.MovieKids + s.TV + s.TVKids
}

// Record is the terminal outcome for one ingested file.
type Record struct {
	ID        int64
	RunID     string
	Source    string
	Kind      string
	Title     string
	Year      int
	Score     int
	CatalogID int64
	Season    int
	Episode   int
	Rescued   bool
	FinalPath string
	Queried   int
	CreatedAt time.Time
}
