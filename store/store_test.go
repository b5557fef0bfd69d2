package store

import (
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInteractionsRoundtrip(t *testing.T) {
	s := openTestStore(t)

	first := map[string]string{"intent": "GREETING", "sentiment": "POSITIVE"}
	second := map[string]string{"intent": "GOODBYE"}
	if err := s.RecordInteraction("hello panda", first); err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}
	if err := s.RecordInteraction("bye panda", second); err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}

	samples, err := s.Interactions(0)
	if err != nil {
		t.Fatalf("Interactions: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].Text != "hello panda" || !reflect.DeepEqual(samples[0].Labels, first) {
		t.Fatalf("first sample = %+v", samples[0])
	}
	if samples[1].Text != "bye panda" || !reflect.DeepEqual(samples[1].Labels, second) {
		t.Fatalf("second sample = %+v", samples[1])
	}

	limited, err := s.Interactions(1)
	if err != nil {
		t.Fatalf("Interactions(1): %v", err)
	}
	if len(limited) != 1 || limited[0].Text != "hello panda" {
		t.Fatalf("limited export = %+v", limited)
	}
}

func TestRecentMessagesChronological(t *testing.T) {
	s := openTestStore(t)

	for _, text := range []string{"one", "two", "three"} {
		if err := s.AddMessage("user", text); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	msgs, err := s.RecentMessages(2)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text != "two" || msgs[1].Text != "three" {
		t.Fatalf("messages = %+v, want [two three]", msgs)
	}
}
