package session

import (
	"fmt"
	"testing"

	"github.com/vango-go/coach/pkg/coach"
)

func TestFeed_SuggestionCap(t *testing.T) {
	f := NewFeed()

	for i := 1; i <= 5; i++ {
		f.AddSuggestion(coach.Suggestion{Text: fmt.Sprintf("s%d", i), Timestamp: fmt.Sprintf("t%d", i)})
	}

	got := f.Suggestions()
	if len(got) != 3 {
		t.Fatalf("suggestion count = %d, want 3", len(got))
	}
	// Most recent first: s5, s4, s3.
	want := []string{"s5", "s4", "s3"}
	for i, w := range want {
		if got[i].Text != w {
			t.Errorf("suggestion[%d] = %q, want %q", i, got[i].Text, w)
		}
	}
}

func TestFeed_SuggestionNoDedup(t *testing.T) {
	f := NewFeed()
	f.AddSuggestion(coach.Suggestion{Text: "slow down"})
	f.AddSuggestion(coach.Suggestion{Text: "slow down"})

	if got := f.Suggestions(); len(got) != 2 {
		t.Errorf("suggestion count = %d, want 2 (no deduplication)", len(got))
	}
}

func TestFeed_TranscriptAppendOnly(t *testing.T) {
	f := NewFeed()

	for i := 0; i < 10; i++ {
		f.AddTranscript(coach.TranscriptEntry{
			Speaker: coach.SpeakerUser,
			Text:    fmt.Sprintf("line %d", i),
		})
	}

	got := f.Transcript()
	if len(got) != 10 {
		t.Fatalf("transcript length = %d, want 10", len(got))
	}
	for i, e := range got {
		if e.Text != fmt.Sprintf("line %d", i) {
			t.Errorf("transcript[%d] = %q, out of order", i, e.Text)
		}
	}
}

func TestFeed_Reset(t *testing.T) {
	f := NewFeed()
	f.AddSuggestion(coach.Suggestion{Text: "s"})
	f.AddTranscript(coach.TranscriptEntry{Text: "t"})

	f.Reset()

	if len(f.Suggestions()) != 0 || len(f.Transcript()) != 0 {
		t.Error("feed not empty after reset")
	}
}

func TestFeed_SnapshotIsolation(t *testing.T) {
	f := NewFeed()
	f.AddSuggestion(coach.Suggestion{Text: "a"})

	snap := f.Suggestions()
	f.AddSuggestion(coach.Suggestion{Text: "b"})

	if len(snap) != 1 || snap[0].Text != "a" {
		t.Errorf("snapshot mutated by later insert: %+v", snap)
	}
}
