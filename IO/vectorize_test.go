package IO

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("  Hello, PANDA!! what's up?  ")
	want := []string{"hello", "panda", "whats", "up"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}

	if toks := Tokenize(""); len(toks) != 0 {
		t.Fatalf("Tokenize(\"\") = %v, want empty", toks)
	}
	if toks := Tokenize("!!! ... ???"); len(toks) != 0 {
		t.Fatalf("Tokenize(punctuation) = %v, want empty", toks)
	}
}

func TestBuildVocabularyFrequencyOrder(t *testing.T) {
	corpus := []string{
		"tea tea tea coffee coffee water",
		"coffee tea",
	}
	vocab := BuildVocabulary(corpus, 10)

	// tea: 4, coffee: 3, water: 1
	want := []string{"tea", "coffee", "water"}
	if !reflect.DeepEqual(vocab.IDToToken, want) {
		t.Fatalf("vocab order = %v, want %v", vocab.IDToToken, want)
	}
	if id, ok := vocab.Lookup("tea"); !ok || id != 0 {
		t.Fatalf("Lookup(tea) = %d,%v want 0,true", id, ok)
	}
}

func TestBuildVocabularyTieFirstSeen(t *testing.T) {
	vocab := BuildVocabulary([]string{"alpha beta", "beta alpha gamma"}, 10)
	// alpha and beta both occur twice; alpha was seen first.
	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(vocab.IDToToken, want) {
		t.Fatalf("vocab order = %v, want %v", vocab.IDToToken, want)
	}
}

func TestBuildVocabularyTruncates(t *testing.T) {
	vocab := BuildVocabulary([]string{"a a a b b c"}, 2)
	if vocab.Size() != 2 {
		t.Fatalf("vocab size = %d, want 2", vocab.Size())
	}
	if _, ok := vocab.Lookup("c"); ok {
		t.Fatalf("least frequent token survived truncation")
	}
}

func TestVectorizeTermFrequency(t *testing.T) {
	vocab := BuildVocabulary([]string{"hello bye"}, 4)
	vec := Vectorize("hello hello bye unknown", vocab, 4)

	r, c := vec.Dims()
	if r != 4 || c != 1 {
		t.Fatalf("vector dims = %dx%d, want 4x1", r, c)
	}
	if got := vec.At(0, 0); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("hello tf = %g, want 0.5", got)
	}
	if got := vec.At(1, 0); math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("bye tf = %g, want 0.25", got)
	}
	// unknown is out of vocabulary; dims 2 and 3 stay empty
	if vec.At(2, 0) != 0 || vec.At(3, 0) != 0 {
		t.Fatalf("out-of-vocabulary token leaked into the vector")
	}
}

func TestVectorizeEmptyString(t *testing.T) {
	vocab := BuildVocabulary([]string{"hello"}, 2)
	vec := Vectorize("", vocab, 2)
	for i := 0; i < 2; i++ {
		if vec.At(i, 0) != 0 {
			t.Fatalf("empty document produced nonzero vector entry at %d", i)
		}
	}
}

func TestSampleUnmarshalFlattens(t *testing.T) {
	var s Sample
	raw := []byte(`{"text":"hello panda","intent":"GREETING","sentiment":"POSITIVE"}`)
	if err := s.UnmarshalJSON(raw); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if s.Text != "hello panda" {
		t.Fatalf("Text = %q", s.Text)
	}
	want := map[string]string{"intent": "GREETING", "sentiment": "POSITIVE"}
	if !reflect.DeepEqual(s.Labels, want) {
		t.Fatalf("Labels = %v, want %v", s.Labels, want)
	}
}
