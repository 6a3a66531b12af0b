package app

// FileService defines the filesystem operations the engine relies on
type FileService interface {
	ListFiles(dir string) ([]string, error)
	EnsureDir(path string) error
	UniqueDestination(folder, name string) (string, error)
	MoveFile(from, to string) error
	Exists(path string) (bool, error)
	PruneEmptyDirectories(dir string) (int, error)
}

// Journal persists the history log outside the process
type Journal interface {
	Append(rec MoveRecord) error
	Load() ([]MoveRecord, error)
	Clear() error
	Close() error
}

// Notifier announces finished runs to the user
type Notifier interface {
	Notify(title, message string)
}

// Progress is reported after every successful move
type Progress struct {
	Done   int
	Total  int
	Counts Counts
	Last   MoveRecord
}

// Percent is the integer percentage of Done over Total.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Done * 100 / p.Total
}

// Observer receives progress synchronously on the goroutine running the sort
type Observer interface {
	OnProgress(p Progress)
}

type ObserverFunc func(p Progress)

func (f ObserverFunc) OnProgress(p Progress) {
	f(p)
}

// SortRequest holds the input of a sort run
type SortRequest struct {
	Directories []string
	Enabled     Enabled
}

// SortResult holds what a sort run did
type SortResult struct {
	RunID        string
	TotalFiles   int
	Counts       Counts
	Moves        []MoveRecord
	NoCandidates bool
	Cancelled    bool
	MissingDirs  []string
	Errors       []error
}

// UndoResult holds the aggregate outcome of an undo
type UndoResult struct {
	Attempted    int
	Restored     int
	Skipped      int
	Failed       int
	PrunedDirs   int
	HistoryEmpty bool
	Errors       []error
}
