package domain

// Dialect is one catalog entry of the fixed 8-variety catalog: the standard
// (prestige) variety plus 7 regional varieties. The catalog is seeded once at
// pipeline start and never learned from data.
type Dialect struct {
	Code   string // stable identity, e.g. "msa", "egy"
	Name   string
	Region string
	Corpus string // label of the corpus this dialect's forms come from
}

// StandardDialectCode identifies the prestige variety every lexicon register
// maps to.
const StandardDialectCode = "msa"

// DialectCatalog returns the fixed catalog in seeding order, standard first.
func DialectCatalog() []Dialect {
	return []Dialect{
		{Code: StandardDialectCode, Name: "Modern Standard Arabic", Region: "pan-Arab", Corpus: "lexicon"},
		{Code: "egy", Name: "Egyptian Arabic", Region: "Egypt", Corpus: "egy_corpus"},
		{Code: "glf", Name: "Gulf Arabic", Region: "Gulf", Corpus: "glf_corpus"},
		{Code: "irq", Name: "Iraqi Arabic", Region: "Iraq", Corpus: "irq_corpus"},
		{Code: "lev", Name: "Levantine Arabic", Region: "Levant", Corpus: "lev_corpus"},
		{Code: "lib", Name: "Libyan Arabic", Region: "Libya", Corpus: "lib_corpus"},
		{Code: "mor", Name: "Moroccan Arabic", Region: "Morocco", Corpus: "mor_corpus"},
		{Code: "yem", Name: "Yemeni Arabic", Region: "Yemen", Corpus: "yem_corpus"},
	}
}
