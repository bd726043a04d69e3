// Package corpus parses one dialect corpus: a forms file of attested token
// occurrences and its matching sentences file. Pure functions: file paths
// in, rows out. Lemma id resolution happens in the pipeline, not here.
package corpus

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/lisanlab/lisan-backend/internal/tabular"
)

// DefaultTokenColumn is the raw-token column most corpora use.
// The Egyptian corpus instead carries a conventional-orthography column
// ("coda"); the token column is a per-source configuration value resolved
// before header validation.
const DefaultTokenColumn = "form"

// FormRow is one validated forms-file row. LemmaID and MSALemmaID are raw
// foreign keys; the sentinel "0" and unknown ids leave the relationship
// unset downstream.
type FormRow struct {
	SentenceID string
	Position   int
	Token      string
	RawToken   string
	Gloss      string
	POS        string

	Prefix string
	Stem   string
	Suffix string

	Person string
	Gender string
	Number string

	SubDialect string

	LemmaID    string
	MSALemmaID string
}

// SentenceRow is one validated sentences-file row.
type SentenceRow struct {
	ID   string
	Text string
}

// Stats holds parser statistics for logging.
type Stats struct {
	TotalRows   int
	SkippedRows int
}

// FormsResult holds parsed form rows.
type FormsResult struct {
	Rows  []FormRow
	Stats Stats
}

// SentencesResult holds parsed sentence rows.
type SentencesResult struct {
	Rows  []SentenceRow
	Stats Stats
}

// formsColumns returns the required columns for a forms file given its
// resolved token column.
func formsColumns(tokenColumn string) []string {
	return []string{"sentence_id", "position", tokenColumn, "lemma_id", "msa_lemma_id"}
}

// ParseForms reads a forms CSV. Rows with a missing sentence id, an empty
// token, or an unparseable position are counted and skipped.
func ParseForms(path, tokenColumn string) (FormsResult, error) {
	if tokenColumn == "" {
		tokenColumn = DefaultTokenColumn
	}

	r, f, err := tabular.Open(path, ',', formsColumns(tokenColumn))
	if err != nil {
		return FormsResult{}, err
	}
	defer f.Close()

	var result FormsResult
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, tabular.ErrMalformedRow) {
				result.Stats.SkippedRows++
				continue
			}
			return FormsResult{}, err
		}
		result.Stats.TotalRows++

		sentenceID := strings.TrimSpace(row["sentence_id"])
		token := strings.TrimSpace(row[tokenColumn])
		position, perr := strconv.Atoi(strings.TrimSpace(row["position"]))
		if sentenceID == "" || token == "" || perr != nil {
			result.Stats.SkippedRows++
			continue
		}

		raw := strings.TrimSpace(row["raw"])
		if raw == "" {
			raw = token
		}

		result.Rows = append(result.Rows, FormRow{
			SentenceID: sentenceID,
			Position:   position,
			Token:      token,
			RawToken:   raw,
			Gloss:      strings.TrimSpace(row["gloss"]),
			POS:        strings.TrimSpace(row["pos"]),
			Prefix:     strings.TrimSpace(row["prefix"]),
			Stem:       strings.TrimSpace(row["stem"]),
			Suffix:     strings.TrimSpace(row["suffix"]),
			Person:     strings.TrimSpace(row["person"]),
			Gender:     strings.TrimSpace(row["gender"]),
			Number:     strings.TrimSpace(row["number"]),
			SubDialect: strings.TrimSpace(row["sub_dialect"]),
			LemmaID:    strings.TrimSpace(row["lemma_id"]),
			MSALemmaID: strings.TrimSpace(row["msa_lemma_id"]),
		})
	}

	return result, nil
}

// ParseSentences reads a sentences CSV. Rows without a sentence id are
// counted and skipped; empty text is kept (a sentence may legitimately be
// imported before its text source is complete).
func ParseSentences(path string) (SentencesResult, error) {
	r, f, err := tabular.Open(path, ',', []string{"sentence_id", "text"})
	if err != nil {
		return SentencesResult{}, err
	}
	defer f.Close()

	var result SentencesResult
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, tabular.ErrMalformedRow) {
				result.Stats.SkippedRows++
				continue
			}
			return SentencesResult{}, err
		}
		result.Stats.TotalRows++

		id := strings.TrimSpace(row["sentence_id"])
		if id == "" {
			result.Stats.SkippedRows++
			continue
		}

		result.Rows = append(result.Rows, SentenceRow{
			ID:   id,
			Text: strings.TrimSpace(row["text"]),
		})
	}

	return result, nil
}
