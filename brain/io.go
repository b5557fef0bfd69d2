package brain

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/pandabrain/pandabrain/IO"
	"github.com/pandabrain/pandabrain/params"
)

// checkpoint is the persisted parameter record. Field names match the
// original weights.json artifact so existing checkpoints load unchanged.
// Momentum buffers are deliberately absent.
type checkpoint struct {
	Version int                   `json:"version"`
	W1      [][]float64           `json:"w1"`
	B1      []float64             `json:"b1"`
	Heads   map[string]headRecord `json:"heads"`
	Vocab   map[string]int        `json:"vocab"`
}

type headRecord struct {
	W [][]float64 `json:"w"`
	B []float64   `json:"b"`
}

// LoadReport says how completely a checkpoint covered the configured heads.
// Missing heads weren't in the record at all; Skipped heads were present but
// had the wrong shape. Both are left at their pre-load values.
type LoadReport struct {
	Missing []string
	Skipped []string
}

// Partial reports whether any configured head wasn't restored.
func (r LoadReport) Partial() bool {
	return len(r.Missing) > 0 || len(r.Skipped) > 0
}

// Save serializes weights, biases and vocabulary to path as JSON, written
// atomically (temp file + rename). An empty path uses the configured
// weights path.
func (b *Brain) Save(path string) error {
	if path == "" {
		path = b.cfg.WeightsPath
	}

	ck := checkpoint{
		Version: b.cfg.Version,
		W1:      denseToRows(b.w1),
		B1:      colToSlice(b.b1),
		Heads:   make(map[string]headRecord, len(b.heads)),
		Vocab:   b.vocab.TokenToID,
	}
	if ck.Vocab == nil {
		ck.Vocab = map[string]int{}
	}
	for name, hd := range b.heads {
		ck.Heads[name] = headRecord{W: denseToRows(hd.w), B: colToSlice(hd.b)}
	}

	out, err := json.Marshal(ck)
	if err != nil {
		return errors.Wrap(err, "can't encode checkpoint")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "can't create checkpoint directory for %s", path)
	}
	return IO.WriteFileAtomic(path, out)
}

// Load replaces the in-memory weights and vocabulary with a checkpoint
// written by Save. On any error the Brain is left exactly as it was. Heads
// missing from the record or stored with the wrong shape keep their current
// parameters and are listed in the report. Every momentum buffer is re-zeroed
// after a successful load.
func (b *Brain) Load(path string) (LoadReport, error) {
	if path == "" {
		path = b.cfg.WeightsPath
	}

	var report LoadReport

	raw, err := os.ReadFile(path)
	if err != nil {
		return report, errors.Wrapf(err, "checkpoint not found at %s", path)
	}
	var ck checkpoint
	if err := json.Unmarshal(raw, &ck); err != nil {
		return report, errors.Wrapf(err, "checkpoint %s not loadable", path)
	}

	w1, err := rowsToDense(ck.W1, b.cfg.InputSize, b.cfg.HiddenSize)
	if err != nil {
		return report, errors.Wrapf(err, "checkpoint %s: hidden weights", path)
	}
	if len(ck.B1) != b.cfg.HiddenSize {
		return report, errors.Errorf("checkpoint %s: hidden bias has %d entries, want %d",
			path, len(ck.B1), b.cfg.HiddenSize)
	}

	vocab, err := vocabFromRecord(ck.Vocab)
	if err != nil {
		return report, errors.Wrapf(err, "checkpoint %s", path)
	}

	// Validate each head before mutating anything.
	staged := make(map[string]*head, len(ck.Heads))
	for _, name := range b.headNames {
		hd := b.heads[name]
		rec, ok := ck.Heads[name]
		if !ok {
			report.Missing = append(report.Missing, name)
			continue
		}
		w, err := rowsToDense(rec.W, b.cfg.HiddenSize, hd.size)
		if err != nil || len(rec.B) != hd.size {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		staged[name] = &head{
			size:   hd.size,
			labels: hd.labels,
			index:  hd.index,
			w:      w,
			b:      mat.NewDense(hd.size, 1, append([]float64(nil), rec.B...)),
		}
	}

	b.w1 = w1
	b.b1 = mat.NewDense(b.cfg.HiddenSize, 1, append([]float64(nil), ck.B1...))
	b.vocab = vocab
	for name, hd := range staged {
		b.heads[name] = hd
	}
	b.zeroMomentum()

	return report, nil
}

// IsTrained reports whether a checkpoint exists at the configured path.
func (b *Brain) IsTrained() bool {
	_, err := os.Stat(b.cfg.WeightsPath)
	return err == nil
}

func vocabFromRecord(rec map[string]int) (params.Vocabulary, error) {
	tokens := make([]string, len(rec))
	for tok, id := range rec {
		if id < 0 || id >= len(rec) {
			return params.Vocabulary{}, errors.Errorf("vocab index %d for %q out of range", id, tok)
		}
		if tokens[id] != "" {
			return params.Vocabulary{}, errors.Errorf("vocab index %d assigned twice", id)
		}
		tokens[id] = tok
	}
	return params.NewVocabulary(tokens), nil
}

func denseToRows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

func rowsToDense(rows [][]float64, r, c int) (*mat.Dense, error) {
	if len(rows) != r {
		return nil, errors.Errorf("matrix has %d rows, want %d", len(rows), r)
	}
	out := mat.NewDense(r, c, nil)
	for i, row := range rows {
		if len(row) != c {
			return nil, errors.Errorf("row %d has %d columns, want %d", i, len(row), c)
		}
		for j, v := range row {
			out.Set(i, j, v)
		}
	}
	return out, nil
}

func colToSlice(v *mat.Dense) []float64 {
	r, _ := v.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = v.At(i, 0)
	}
	return out
}
