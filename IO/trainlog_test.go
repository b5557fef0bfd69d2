package IO

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readRuns(t *testing.T, path string) []Run {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var log struct {
		Runs []Run `json:"runs"`
	}
	if err := json.Unmarshal(raw, &log); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return log.Runs
}

func TestAppendRunKeepsLastFifty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training_log.json")

	for i := 0; i < 55; i++ {
		run := Run{Timestamp: time.Now().UTC(), Epochs: i, Samples: 10}
		if err := AppendRun(path, run); err != nil {
			t.Fatalf("AppendRun #%d: %v", i, err)
		}
	}

	runs := readRuns(t, path)
	if len(runs) != 50 {
		t.Fatalf("kept %d runs, want 50", len(runs))
	}
	if runs[0].Epochs != 5 || runs[49].Epochs != 54 {
		t.Fatalf("wrong runs kept: first epochs=%d last epochs=%d", runs[0].Epochs, runs[49].Epochs)
	}
}

func TestAppendRunRecoversFromCorruptLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training_log.json")
	if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := AppendRun(path, Run{Timestamp: time.Now().UTC(), Epochs: 7}); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}
	runs := readRuns(t, path)
	if len(runs) != 1 || runs[0].Epochs != 7 {
		t.Fatalf("runs = %+v, want single run with epochs=7", runs)
	}
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) != "second" {
		t.Fatalf("content = %q, want %q", raw, "second")
	}
}
