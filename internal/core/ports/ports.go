package ports

import (
	"context"
	"time"

	"styledetect/internal/data/history"
	"styledetect/internal/engine/styled"
)

// FileAnalyzer classifies the tagged templates of one source file.
type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string, content []byte) (*styled.FileReport, error)
}

// HistoryStore abstracts run persistence for trend workflows.
type HistoryStore interface {
	SaveRun(run history.Run, matches []history.Match) error
	LoadRuns(projectKey string, since time.Time) ([]history.Run, error)
	LoadMatches(runID string) ([]history.Match, error)
	Close() error
}

// ScanRequest defines a scan operation request for driving adapters.
type ScanRequest struct {
	Paths []string
}

// FileFailure records a file that could not be read or parsed.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScanResult summarizes a completed scan. Files is sorted by path.
type ScanResult struct {
	RunID       string               `json:"run_id"`
	ProjectRoot string               `json:"project_root"`
	StartedAt   time.Time            `json:"started_at"`
	Duration    time.Duration        `json:"duration"`
	Files       []*styled.FileReport `json:"files"`
	Failures    []FileFailure        `json:"failures,omitempty"`
}

// MatchCount returns the number of templates recognised across all files.
func (r ScanResult) MatchCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Matches())
	}
	return n
}

// WatchUpdate is emitted to driving adapters after each watch-mode rescan.
type WatchUpdate struct {
	Changed   []string
	Removed   []string
	Reports   []*styled.FileReport
	Failures  []FileFailure
	FileCount int
	Matches   int
	Timestamp time.Time
}

// WatchService exposes watch lifecycle and updates for driving adapters.
type WatchService interface {
	StartWatcher() error
	SetUpdateHandler(handler func(WatchUpdate))
	Close() error
}

// ReportWriter renders a scan result in one output format.
type ReportWriter interface {
	Write(result ScanResult) ([]byte, error)
}

// RunRecord is one run and its matches, queued for the history store.
type RunRecord struct {
	Run     history.Run
	Matches []history.Match
}

type EnqueueResult int

const (
	EnqueueAccepted EnqueueResult = iota
	EnqueueDropped
)

func (r EnqueueResult) String() string {
	if r == EnqueueAccepted {
		return "accepted"
	}
	return "dropped"
}

// RunQueue buffers run records between watch-mode rescans and the history
// writer. DequeueBatch returns io.EOF once the queue is closed and drained.
type RunQueue interface {
	Enqueue(rec RunRecord) EnqueueResult
	DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]RunRecord, error)
	Close() error
	Len() int
}
