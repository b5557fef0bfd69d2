package IO

import (
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/pandabrain/pandabrain/params"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Tokenize lowercases, strips punctuation and splits on whitespace.
func Tokenize(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = nonWord.ReplaceAllString(text, "")
	return strings.Fields(text)
}

// BuildVocabulary counts tokens across the whole corpus and keeps the
// maxSize most frequent ones. Index order is descending frequency; tokens
// with equal counts keep their first-seen order.
func BuildVocabulary(corpus []string, maxSize int) params.Vocabulary {
	counts := make(map[string]int)
	var order []string
	for _, text := range corpus {
		for _, tok := range Tokenize(text) {
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxSize {
		order = order[:maxSize]
	}
	return params.NewVocabulary(order)
}

// Vectorize turns text into a (size x 1) bag-of-words term-frequency vector:
// vec[vocab[tok]] = count(tok) / len(tokens). Tokens outside the vocabulary
// are dropped; an empty document yields the zero vector.
func Vectorize(text string, vocab params.Vocabulary, size int) *mat.Dense {
	vec := mat.NewDense(size, 1, nil)
	tokens := Tokenize(text)

	total := float64(len(tokens))
	if total == 0 {
		total = 1
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	for tok, count := range counts {
		if id, ok := vocab.Lookup(tok); ok && id < size {
			vec.Set(id, 0, float64(count)/total)
		}
	}
	return vec
}
