package domain

import "strings"

// Concept is a meaning unit defined by a pipe-delimited set of synonymous
// headwords, optionally carrying an English synonym set, a gloss, and a
// provenance tag. Hierarchy is parent-pointer based: source data does not
// guarantee acyclicity, so traversal must guard with a visited set.
type Concept struct {
	ID            string
	Synset        string // pipe-delimited Arabic synonyms
	EnglishSynset string
	Gloss         string
	Source        string // provenance/quality tag

	Parent   *Concept
	Children []*Concept
}

// Terms splits the Arabic synset into its individual synonym terms,
// dropping empty segments.
func (c *Concept) Terms() []string {
	parts := strings.Split(c.Synset, "|")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, p)
		}
	}
	return terms
}

// Ancestors walks parent pointers up from the concept, excluding the concept
// itself. The visited guard makes the walk terminate on cyclic source data.
func (c *Concept) Ancestors() []*Concept {
	var out []*Concept
	visited := map[string]bool{c.ID: true}
	for p := c.Parent; p != nil && !visited[p.ID]; p = p.Parent {
		visited[p.ID] = true
		out = append(out, p)
	}
	return out
}
