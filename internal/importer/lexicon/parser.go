// Package lexicon parses the lexicon CSV into typed headword rows.
// Pure function: file path in, rows out. No registry or graph dependencies.
package lexicon

import (
	"errors"
	"io"
	"strings"

	"github.com/lisanlab/lisan-backend/internal/domain"
	"github.com/lisanlab/lisan-backend/internal/tabular"
)

// RequiredColumns are the columns a lexicon file must declare.
var RequiredColumns = []string{"id", "lemma", "register", "pos_cat", "pos"}

// Entry is one validated lexicon row.
type Entry struct {
	ID          string
	Headword    string
	Register    domain.Register
	POSCategory string
	POS         string
	Root        string // raw root text, may be empty
	Features    *domain.LemmaFeatures
}

// Stats holds parser statistics for logging.
type Stats struct {
	TotalRows   int
	SkippedRows int
}

// ParseResult holds parsed lexicon entries.
type ParseResult struct {
	Entries []Entry
	Stats   Stats
}

// Parse reads a lexicon CSV. Rows missing an id or headword are counted and
// skipped, never fatal; header-level failures (missing file, no header,
// missing required columns) propagate.
func Parse(path string) (ParseResult, error) {
	r, f, err := tabular.Open(path, ',', RequiredColumns)
	if err != nil {
		return ParseResult{}, err
	}
	defer f.Close()

	var result ParseResult
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
			return ParseResult{}, err
		}
		result.Stats.TotalRows++

		id := strings.TrimSpace(row["id"])
		headword := strings.TrimSpace(row["lemma"])
		if id == "" || headword == "" {
			result.Stats.SkippedRows++
			continue
		}

		result.Entries = append(result.Entries, Entry{
			ID:          id,
			Headword:    headword,
			Register:    domain.ParseRegister(row["register"]),
			POSCategory: strings.TrimSpace(row["pos_cat"]),
			POS:         strings.TrimSpace(row["pos"]),
			Root:        strings.TrimSpace(row["root"]),
			Features:    parseFeatures(row),
		})
	}

	return result, nil
}

// parseFeatures extracts the optional morphological feature set.
// Returns nil when every feature column is empty or absent.
func parseFeatures(row tabular.Row) *domain.LemmaFeatures {
	f := domain.LemmaFeatures{
		Augmentation: strings.TrimSpace(row["aug"]),
		Number:       strings.TrimSpace(row["number"]),
		Person:       strings.TrimSpace(row["person"]),
		Gender:       strings.TrimSpace(row["gender"]),
		Voice:        strings.TrimSpace(row["voice"]),
		Transitivity: strings.TrimSpace(row["transitivity"]),
	}
	switch strings.ToLower(strings.TrimSpace(row["uninflected"])) {
	case "1", "true", "yes":
		f.Uninflected = true
	}

	if f == (domain.LemmaFeatures{}) {
		return nil
	}
	return &f
}
