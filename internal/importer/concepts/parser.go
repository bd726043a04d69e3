// Package concepts parses the concept-synset ontology CSV and its separate
// hierarchy CSV. Pure functions: file path in, rows out.
package concepts

import (
	"errors"
	"io"
	"strings"

	"github.com/lisanlab/lisan-backend/internal/tabular"
)

// RequiredColumns are the columns a concepts file must declare.
var RequiredColumns = []string{"id", "synset", "source"}

// HierarchyColumns are the columns a hierarchy file must declare.
var HierarchyColumns = []string{"id", "parent_id"}

// Row is one validated concept row.
type Row struct {
	ID            string
	Synset        string
	EnglishSynset string
	Gloss         string
	Source        string
}

// Link is one parent pointer from the hierarchy file.
// A ParentID of "0" marks a root-level concept.
type Link struct {
	ID       string
	ParentID string
}

// Stats holds parser statistics for logging.
type Stats struct {
	TotalRows   int
	SkippedRows int
}

// ParseResult holds parsed concept rows.
type ParseResult struct {
	Rows  []Row
	Stats Stats
}

// HierarchyResult holds parsed hierarchy links.
type HierarchyResult struct {
	Links []Link
	Stats Stats
}

// Parse reads a concepts CSV. Rows without an id or synset are skipped.
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
		synset := strings.TrimSpace(row["synset"])
		if id == "" || synset == "" {
			result.Stats.SkippedRows++
			continue
		}

		result.Rows = append(result.Rows, Row{
			ID:            id,
			Synset:        synset,
			EnglishSynset: strings.TrimSpace(row["eng_synset"]),
			Gloss:         strings.TrimSpace(row["gloss"]),
			Source:        strings.TrimSpace(row["source"]),
		})
	}

	return result, nil
}

// ParseHierarchy reads a hierarchy CSV of (concept id, parent id) pairs.
// Root-level markers (parent "0") are kept; the pipeline decides what to do
// with them.
func ParseHierarchy(path string) (HierarchyResult, error) {
	r, f, err := tabular.Open(path, ',', HierarchyColumns)
	if err != nil {
		return HierarchyResult{}, err
	}
	defer f.Close()

	var result HierarchyResult
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
			return HierarchyResult{}, err
		}
		result.Stats.TotalRows++

		id := strings.TrimSpace(row["id"])
		parent := strings.TrimSpace(row["parent_id"])
		if id == "" || parent == "" {
			result.Stats.SkippedRows++
			continue
		}

		result.Links = append(result.Links, Link{ID: id, ParentID: parent})
	}

	return result, nil
}
