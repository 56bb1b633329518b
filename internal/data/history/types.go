package history

import "time"

// Run summarizes one scan.
type Run struct {
	ID         string
	ProjectKey string
	Timestamp  time.Time
	Files      int
	Matches    int
	Failures   int
}

// Match is one classified template recorded for a run.
type Match struct {
	RunID     string
	Path      string
	Line      int
	Column    int
	Kind      string
	Component string
	LocalName string
}
