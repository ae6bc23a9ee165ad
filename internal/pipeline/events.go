package pipeline

// Event reports completion of a single batch item.
type Event struct {
	Completed int
	Total     int
	RecordID  string
	Message   string
	Failed    bool
}

// Summary is the terminal result of a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Reclaimed int
}

// ProgressFunc receives an Event after every processed item. Callbacks run on
// the batch goroutine; keep them fast.
type ProgressFunc func(Event)
