package domain

import (
	"fmt"
	"strconv"
)

// Sentence is one corpus sentence. Identity is composite: the source sentence
// id is only unique within its dialect corpus.
type Sentence struct {
	Key      string // dialect|source-id
	SourceID string
	Text     string
	Dialect  *Dialect
	Forms    []*Form
}

// Form is one attested token occurrence within a corpus sentence.
// Identity is composite: (dialect, sentence, position).
type Form struct {
	Key      string
	Position int
	Token    string // display token (CODA orthography where available)
	RawToken string
	Gloss    string
	POS      string

	Prefix string
	Stem   string
	Suffix string

	Person string
	Gender string
	Number string

	SubDialect string

	Lemma      *Lemma // dialect-side, "realized" lemma
	Equivalent *Lemma // standard-side equivalent, optional
	Dialect    *Dialect
	Sentence   *Sentence
}

// SentenceKey builds the composite identity key for a sentence.
func SentenceKey(dialectCode, sourceID string) string {
	return dialectCode + "|" + sourceID
}

// FormKey builds the composite identity key for a form.
func FormKey(dialectCode, sentenceID string, position int) string {
	return dialectCode + "|" + sentenceID + "|" + strconv.Itoa(position)
}

// GlossEntryKey builds the dedup key for one gloss index entry.
func GlossEntryKey(token, lemmaID string) string {
	return fmt.Sprintf("%s|%s", token, lemmaID)
}

// PairKey canonicalizes an unordered lemma pair by sorting the two identities
// before joining, so (A,B) and (B,A) collapse to one key.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
