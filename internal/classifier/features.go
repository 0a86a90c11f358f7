package classifier

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

// DefaultBuckets is the size of the hashed feature space.
const DefaultBuckets = 1 << 18

// Tokenize NFKC-normalizes and lower-cases text, splits it on anything that
// is not a letter or digit, and keeps at most maxLen tokens. maxLen <= 0
// keeps all tokens.
func Tokenize(text string, maxLen int) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if maxLen > 0 && len(tokens) > maxLen {
		tokens = tokens[:maxLen]
	}
	return tokens
}

type feature struct {
	index uint32
	value float64
}

// vector is a sparse, L2-normalized feature vector sorted by index.
type vector []feature

// vectorize hashes unigrams and bigrams into buckets with sublinear term
// frequency.
func vectorize(tokens []string, buckets int) vector {
	counts := make(map[uint32]float64, 2*len(tokens))
	for i, tok := range tokens {
		counts[bucket("u\x00"+tok, buckets)]++
		if i > 0 {
			counts[bucket("b\x00"+tokens[i-1]+"\x00"+tok, buckets)]++
		}
	}

	v := make(vector, 0, len(counts))
	var sq float64
	for idx, c := range counts {
		val := 1 + math.Log(c)
		v = append(v, feature{index: idx, value: val})
		sq += val * val
	}
	slices.SortFunc(v, func(a, b feature) int { return cmp.Compare(a.index, b.index) })
	if sq > 0 {
		n := math.Sqrt(sq)
		for i := range v {
			v[i].value /= n
		}
	}
	return v
}

func bucket(s string, buckets int) uint32 {
	return uint32(xxhash.Sum64String(s) % uint64(buckets))
}
