package index

import (
	"sort"
	"strings"
	"unicode"

	"github.com/xrash/smetrics"

	"github.com/kirezi/inyishu/core"
)

// DefaultMinFuzzyRatio is the similarity floor below which a record is
// not considered a fuzzy candidate.
const DefaultMinFuzzyRatio = 0.70

// Jaro-Winkler parameters (standard values).
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// FuzzyIndex maps records to their normalized text for query-time
// string-similarity scanning. No precomputed structure: an O(N) scan
// per query is acceptable at corpus scale. IDs and Texts are parallel
// and id-sorted.
type FuzzyIndex struct {
	IDs   []core.RecordID
	Texts []string
}

// Search scores every record's normalized text against the normalized
// query with a token-set ratio and returns the top-k candidates at or
// above minRatio.
func (idx *FuzzyIndex) Search(normQuery string, minRatio float64, k int) []core.Candidate {
	if normQuery == "" || len(idx.IDs) == 0 {
		return nil
	}

	scores := make(map[core.RecordID]float64, len(idx.IDs))
	for i, id := range idx.IDs {
		ratio := TokenSetRatio(normQuery, idx.Texts[i])
		if ratio >= minRatio {
			scores[id] = ratio
		}
	}

	return rankCandidates(scores, k)
}

// TokenSetRatio compares two normalized strings by their token sets:
// the shared tokens are compared against each side's full token string
// and the best Jaro-Winkler score wins. A query whose tokens all occur
// in the text scores 1.0 regardless of how much longer the text is,
// which is what makes short typed questions match long stored records.
func TokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var shared, restA, restB []string
	inB := make(map[string]bool, len(tb))
	for _, t := range tb {
		inB[t] = true
	}
	inShared := make(map[string]bool)
	for _, t := range ta {
		if inB[t] {
			shared = append(shared, t)
			inShared[t] = true
		} else {
			restA = append(restA, t)
		}
	}
	for _, t := range tb {
		if !inShared[t] {
			restB = append(restB, t)
		}
	}

	s0 := strings.Join(shared, " ")
	s1 := strings.TrimSpace(s0 + " " + strings.Join(restA, " "))
	s2 := strings.TrimSpace(s0 + " " + strings.Join(restB, " "))

	best := jaroWinkler(s1, s2)
	if s0 != "" {
		if r := jaroWinkler(s0, s1); r > best {
			best = r
		}
		if r := jaroWinkler(s0, s2); r > best {
			best = r
		}
	}
	return best
}

func jaroWinkler(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, jwBoostThreshold, jwPrefixSize)
}

// tokenSet returns the sorted unique tokens of an already-normalized
// string. Punctuation is treated as whitespace so "reussite?" and
// "reussite" tokenize identically.
func tokenSet(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
