package importer

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/lisanlab/lisan-backend/internal/domain"
	"github.com/lisanlab/lisan-backend/internal/importer/corpus"
)

// CorpusSource configures one optional dialect corpus pair. The token column
// is a per-source value resolved before header validation: the Egyptian
// corpus ships a conventional-orthography column instead of the raw form.
type CorpusSource struct {
	Dialect       string `yaml:"dialect"`
	FormsPath     string `yaml:"forms_path"`
	SentencesPath string `yaml:"sentences_path"`
	TokenColumn   string `yaml:"token_column"`
}

// ResolvedTokenColumn returns the configured token column or the default.
func (s CorpusSource) ResolvedTokenColumn() string {
	if s.TokenColumn != "" {
		return s.TokenColumn
	}
	return corpus.DefaultTokenColumn
}

// Config holds import pipeline settings.
type Config struct {
	LexiconPath   string         `yaml:"lexicon_path"   env:"IMPORT_LEXICON_PATH"`
	ConceptsPath  string         `yaml:"concepts_path"  env:"IMPORT_CONCEPTS_PATH"`
	HierarchyPath string         `yaml:"hierarchy_path" env:"IMPORT_HIERARCHY_PATH"`
	Corpora       []CorpusSource `yaml:"corpora"`
	BatchSize     int            `yaml:"batch_size" env:"IMPORT_BATCH_SIZE" env-default:"500"`
	DryRun        bool           `yaml:"dry_run"    env:"IMPORT_DRY_RUN"`
}

// LoadConfig reads importer configuration from a YAML file and environment
// variables. Priority: ENV > YAML > defaults (via env-default tags).
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("import config: read %s: %w", path, err)
			}
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("import config: file %s not found", path)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("import config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required sources are configured and every corpus names
// a dialect from the fixed catalog. Corpora themselves are optional; a run
// with zero corpora produces a valid lexicon-only graph.
func (c *Config) Validate() error {
	if c.LexiconPath == "" {
		return fmt.Errorf("import config: lexicon_path is required")
	}
	if c.ConceptsPath == "" {
		return fmt.Errorf("import config: concepts_path is required")
	}
	if c.HierarchyPath == "" {
		return fmt.Errorf("import config: hierarchy_path is required")
	}

	known := make(map[string]bool)
	for _, d := range domain.DialectCatalog() {
		known[d.Code] = true
	}
	seen := make(map[string]bool)
	for _, src := range c.Corpora {
		if !known[src.Dialect] {
			return fmt.Errorf("import config: unknown corpus dialect %q", src.Dialect)
		}
		if src.Dialect == domain.StandardDialectCode {
			return fmt.Errorf("import config: the standard variety has no corpus")
		}
		if seen[src.Dialect] {
			return fmt.Errorf("import config: duplicate corpus for dialect %q", src.Dialect)
		}
		seen[src.Dialect] = true
		if src.FormsPath == "" || src.SentencesPath == "" {
			return fmt.Errorf("import config: corpus %q needs forms_path and sentences_path", src.Dialect)
		}
	}
	return nil
}
