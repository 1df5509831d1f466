package session

import (
	"sync"

	"github.com/vango-go/coach/pkg/coach"
)

// maxSuggestions bounds the suggestion view: it is a most-recent-N cache,
// not a log.
const maxSuggestions = 3

// Feed aggregates the live view derived from channel events: a bounded
// most-recent-first suggestion list and an unbounded append-only
// transcript. Both are deterministic reductions of the inbound event
// order.
type Feed struct {
	mu          sync.Mutex
	suggestions []coach.Suggestion
	transcript  []coach.TranscriptEntry
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{}
}

// AddSuggestion inserts a suggestion at the front, evicting the oldest
// once the cap is exceeded. Arrival order is authoritative; there is no
// deduplication.
func (f *Feed) AddSuggestion(s coach.Suggestion) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.suggestions = append([]coach.Suggestion{s}, f.suggestions...)
	if len(f.suggestions) > maxSuggestions {
		f.suggestions = f.suggestions[:maxSuggestions]
	}
}

// AddTranscript appends one transcript entry. Entries are never mutated
// after insertion.
func (f *Feed) AddTranscript(e coach.TranscriptEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcript = append(f.transcript, e)
}

// Suggestions returns the current suggestion view, most recent first.
func (f *Feed) Suggestions() []coach.Suggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]coach.Suggestion, len(f.suggestions))
	copy(out, f.suggestions)
	return out
}

// Transcript returns the transcript in arrival order.
func (f *Feed) Transcript() []coach.TranscriptEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]coach.TranscriptEntry, len(f.transcript))
	copy(out, f.transcript)
	return out
}

// Reset clears both views. Called once per session, at end.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestions = nil
	f.transcript = nil
}
