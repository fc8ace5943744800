package embedding

const (
	clsTokenID = 101
	sepTokenID = 102
	vocabSize  = 30000
)

// Encoding is a tokenized single sequence in the layout BERT-style encoders expect.
type Encoding struct {
	IDs           []int64
	AttentionMask []int64
	TypeIDs       []int64
	// SpecialTokensMask marks positions holding special tokens such as [CLS]
	// and [SEP]. It may be nil when the tokenizer does not report them.
	SpecialTokensMask []int64
}

// Len returns the sequence length.
func (e *Encoding) Len() int {
	return len(e.IDs)
}

// Truncate cuts the sequence to at most maxTokens positions. maxTokens <= 0 leaves it unchanged.
// A trailing special token (the closing [SEP]) survives truncation: the sequence keeps its
// first maxTokens-1 positions followed by the original last one.
func (e *Encoding) Truncate(maxTokens int) {
	n := len(e.IDs)
	if maxTokens <= 0 || n <= maxTokens {
		return
	}
	keepLast := maxTokens > 1 && len(e.SpecialTokensMask) == n && e.SpecialTokensMask[n-1] != 0
	cut := func(s []int64) []int64 {
		if len(s) != n {
			return s
		}
		if keepLast {
			return append(s[:maxTokens-1:maxTokens-1], s[n-1])
		}
		return s[:maxTokens]
	}
	e.IDs = cut(e.IDs)
	e.AttentionMask = cut(e.AttentionMask)
	e.TypeIDs = cut(e.TypeIDs)
	e.SpecialTokensMask = cut(e.SpecialTokensMask)
}

// AttendedTokens returns the number of positions whose mask is set.
func (e *Encoding) AttendedTokens() int {
	n := 0
	for _, m := range e.AttentionMask {
		if m != 0 {
			n++
		}
	}
	return n
}

// Tokenizer turns text into a single Encoding.
type Tokenizer interface {
	Encode(text string) (*Encoding, error)
}

// WordTokenizer is a whitespace tokenizer with hash-based token IDs. It needs no
// vocabulary file and is used by tests and the mock server mode.
type WordTokenizer struct {
	AddSpecialTokens bool
}

// Encode splits text into words and maps each word to a stable pseudo token ID.
func (t *WordTokenizer) Encode(text string) (*Encoding, error) {
	words := SplitWords(text)
	n := len(words)
	if t.AddSpecialTokens {
		n += 2
	}
	enc := &Encoding{
		IDs:               make([]int64, 0, n),
		AttentionMask:     make([]int64, n),
		TypeIDs:           make([]int64, n),
		SpecialTokensMask: make([]int64, n),
	}
	if t.AddSpecialTokens {
		enc.IDs = append(enc.IDs, clsTokenID)
		enc.SpecialTokensMask[0] = 1
		enc.SpecialTokensMask[n-1] = 1
	}
	for _, word := range words {
		enc.IDs = append(enc.IDs, int64(HashString(word)%vocabSize))
	}
	if t.AddSpecialTokens {
		enc.IDs = append(enc.IDs, sepTokenID)
	}
	for i := range enc.AttentionMask {
		enc.AttentionMask[i] = 1
	}
	return enc, nil
}

// SplitWords splits text on whitespace and returns non-empty words.
func SplitWords(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// HashString returns a deterministic non-negative hash for use as a pseudo token ID.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	if h < 0 {
		return 0
	}
	return h
}
