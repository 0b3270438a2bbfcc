package core

import (
	"strings"
	"time"
)

// RecordID is the unique identifier of a knowledge record.
// IDs come from the corpus file and are never generated.
type RecordID int64

// Importance classifies how critical a record is to its readers.
type Importance int

const (
	// ImportanceLow marks informational records.
	ImportanceLow Importance = iota + 1
	// ImportanceMedium marks records most users need eventually.
	ImportanceMedium
	// ImportanceHigh marks records with regulatory or deadline weight.
	ImportanceHigh
)

// String returns the corpus-file spelling of the importance level.
func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "low"
	case ImportanceMedium:
		return "medium"
	case ImportanceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Valid reports whether the importance is one of the defined levels.
func (i Importance) Valid() bool {
	return i >= ImportanceLow && i <= ImportanceHigh
}

// ParseImportance converts a corpus-file importance string to an Importance.
func ParseImportance(s string) (Importance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ImportanceLow, nil
	case "medium":
		return ImportanceMedium, nil
	case "high":
		return ImportanceHigh, nil
	default:
		return 0, ErrInvalidImportance
	}
}

// KnowledgeRecord is a single question/answer entry in the corpus.
// Records are immutable once loaded; a changed corpus requires a full
// index rebuild.
type KnowledgeRecord struct {
	ID         RecordID
	Question   string
	Answer     string
	Keywords   []string
	Category   string
	Importance Importance
	Citation   string
	Related    []RecordID
}

// SearchText returns the text indexed for the record: question, answer,
// keywords, category and citation joined with " | ". The same function
// runs at build time and nowhere else, so index and query sides can
// never disagree on what a record "says".
func (r *KnowledgeRecord) SearchText() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{
		r.Question,
		r.Answer,
		strings.Join(r.Keywords, " "),
		r.Category,
		r.Citation,
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " | ")
}

// MethodName identifies one of the retrieval methods.
type MethodName string

const (
	// MethodSparse is BM25 keyword retrieval.
	MethodSparse MethodName = "sparse"
	// MethodDense is embedding similarity retrieval.
	MethodDense MethodName = "dense"
	// MethodFuzzy is string-similarity retrieval.
	MethodFuzzy MethodName = "fuzzy"
)

// Candidate is a single hit from one retrieval method.
// Rank is 1-based; Score is the method's raw score and is only
// comparable within the same method.
type Candidate struct {
	ID    RecordID
	Rank  int
	Score float64
}

// RankedList is the ordered output of one retrieval method.
// Degraded marks a method that failed or timed out; a degraded list is
// always empty and is excluded from confidence normalization.
type RankedList struct {
	Method     MethodName
	Candidates []Candidate
	Degraded   bool
}

// FusedResult is a record's combined standing after rank fusion.
type FusedResult struct {
	ID      RecordID
	Score   float64
	Methods []MethodName
}

// RelatedStub is a lightweight pointer to another record.
type RelatedStub struct {
	ID       RecordID
	Question string
}

// Answer is the result of a query. When Known is false every other
// field except Confidence and Latency is zero: the engine answers from
// the corpus or says it does not know, never anything in between.
type Answer struct {
	Known       bool
	RecordID    RecordID
	Text        string
	Snippet     string
	Citation    string
	Category    string
	Importance  Importance
	Related     []RelatedStub
	Suggestions []RelatedStub
	Confidence  float64
	Latency     time.Duration
}

// UnknownAnswer builds the explicit "no confident answer" result.
func UnknownAnswer(confidence float64, latency time.Duration) *Answer {
	return &Answer{Confidence: confidence, Latency: latency}
}
