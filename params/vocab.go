package params

// Vocabulary maps tokens to their feature-vector index. IDToToken is the
// same mapping in index order; the two are always kept in sync.
type Vocabulary struct {
	TokenToID map[string]int
	IDToToken []string
}

func (v Vocabulary) Size() int {
	return len(v.IDToToken)
}

func (v Vocabulary) Lookup(token string) (int, bool) {
	id, ok := v.TokenToID[token]
	return id, ok
}

// NewVocabulary builds a Vocabulary from tokens already in index order.
func NewVocabulary(tokens []string) Vocabulary {
	v := Vocabulary{
		TokenToID: make(map[string]int, len(tokens)),
		IDToToken: make([]string, len(tokens)),
	}
	for i, t := range tokens {
		v.TokenToID[t] = i
		v.IDToToken[i] = t
	}
	return v
}
