package IO

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// maxLoggedRuns bounds the training log so repeated retrains don't grow it
// forever.
const maxLoggedRuns = 50

// Run records one training invocation for the log.
type Run struct {
	Timestamp   time.Time `json:"timestamp"`
	Epochs      int       `json:"epochs"`
	Samples     int       `json:"samples"`
	InitialLoss float64   `json:"initial_loss"`
	FinalLoss   float64   `json:"final_loss"`
}

type runLog struct {
	Runs []Run `json:"runs"`
}

// AppendRun adds a run to the training log at path, keeping the last 50.
// A missing or corrupt log is started fresh rather than treated as fatal.
func AppendRun(path string, run Run) error {
	var log runLog
	if raw, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(raw, &log)
	}

	log.Runs = append(log.Runs, run)
	if len(log.Runs) > maxLoggedRuns {
		log.Runs = log.Runs[len(log.Runs)-maxLoggedRuns:]
	}

	out, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return errors.Wrap(err, "can't encode training log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "can't create log directory for %s", path)
	}
	return WriteFileAtomic(path, out)
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it into place, so an interrupted write never leaves a truncated
// file at path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, "can't create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "can't write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "can't close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "can't replace %s", path)
	}
	return nil
}
