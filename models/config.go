package models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Values come from an optional YAML
// file, then DOCMETA_* environment variables (a .env file is honoured),
// then CLI flags applied by the caller.
type Config struct {
	Summary  SummaryConfig  `yaml:"summary"`
	Keywords KeywordsConfig `yaml:"keywords"`
	Entities EntitiesConfig `yaml:"entities"`
	OCR      OCRConfig      `yaml:"ocr"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Output   OutputConfig   `yaml:"output"`
	Server   ServerConfig   `yaml:"server"`
	History  HistoryConfig  `yaml:"history"`
}

type SummaryConfig struct {
	Sentences        int `yaml:"sentences"`
	MinSentenceChars int `yaml:"min_sentence_chars"`
	MaxSectionChars  int `yaml:"max_section_chars"`
}

// KeywordsConfig controls the optional keyword stage. Count 0 disables it.
type KeywordsConfig struct {
	Count int `yaml:"count"`
}

type EntitiesConfig struct {
	WindowChars int `yaml:"window_chars"`
}

type OCRConfig struct {
	MinTextChars int     `yaml:"min_text_chars"`
	Scale        float64 `yaml:"scale"`
	Language     string  `yaml:"language"`
}

type EmbedderConfig struct {
	Backend    string        `yaml:"backend"` // ollama | lexical
	URL        string        `yaml:"url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	Dimensions int           `yaml:"dimensions"` // lexical backend only
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`    // empty means next to the source file
	Format string `yaml:"format"` // json | yaml | text
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	UploadDir      string `yaml:"upload_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// HistoryConfig points at the SQLite run history. Empty Path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Summary: SummaryConfig{
			Sentences:        3,
			MinSentenceChars: 20,
			MaxSectionChars:  200,
		},
		Keywords: KeywordsConfig{Count: 15},
		Entities: EntitiesConfig{WindowChars: 1000},
		OCR: OCRConfig{
			MinTextChars: 50,
			Scale:        2.0,
			Language:     "eng",
		},
		Embedder: EmbedderConfig{
			Backend:    "ollama",
			URL:        "http://localhost:11434",
			Model:      "all-minilm",
			Timeout:    60 * time.Second,
			Dimensions: 256,
		},
		Output: OutputConfig{Format: "json"},
		Server: ServerConfig{
			Addr:           ":8080",
			UploadDir:      "docmeta-uploads",
			MaxUploadBytes: 32 << 20,
		},
	}
}

// LoadConfig reads the YAML file at path (a missing file is not an error),
// then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	setInt("DOCMETA_SUMMARY_SENTENCES", &c.Summary.Sentences)
	setInt("DOCMETA_KEYWORDS_COUNT", &c.Keywords.Count)
	setInt("DOCMETA_ENTITY_WINDOW_CHARS", &c.Entities.WindowChars)
	setInt("DOCMETA_OCR_MIN_TEXT_CHARS", &c.OCR.MinTextChars)
	setString("DOCMETA_OCR_LANGUAGE", &c.OCR.Language)
	setString("DOCMETA_EMBEDDER_BACKEND", &c.Embedder.Backend)
	setString("DOCMETA_EMBEDDER_URL", &c.Embedder.URL)
	setString("DOCMETA_EMBEDDER_MODEL", &c.Embedder.Model)
	setString("DOCMETA_OUTPUT_DIR", &c.Output.Dir)
	setString("DOCMETA_OUTPUT_FORMAT", &c.Output.Format)
	setString("DOCMETA_SERVER_ADDR", &c.Server.Addr)
	setString("DOCMETA_UPLOAD_DIR", &c.Server.UploadDir)
	setString("DOCMETA_HISTORY_DB", &c.History.Path)

	if v, ok := os.LookupEnv("DOCMETA_EMBEDDER_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid DOCMETA_EMBEDDER_TIMEOUT: %w", err))
		} else {
			c.Embedder.Timeout = d
		}
	}

	return errors.Join(errs...)
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Summary.Sentences < 1 {
		return fmt.Errorf("summary.sentences must be at least 1, got %d", c.Summary.Sentences)
	}
	if c.Keywords.Count < 0 {
		return fmt.Errorf("keywords.count must not be negative, got %d", c.Keywords.Count)
	}
	if c.Entities.WindowChars < 1 {
		return fmt.Errorf("entities.window_chars must be at least 1, got %d", c.Entities.WindowChars)
	}
	if c.OCR.Scale <= 0 {
		return fmt.Errorf("ocr.scale must be positive, got %v", c.OCR.Scale)
	}
	switch c.Embedder.Backend {
	case "ollama", "lexical":
	default:
		return fmt.Errorf("unknown embedder backend %q (want ollama or lexical)", c.Embedder.Backend)
	}
	switch c.Output.Format {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("unknown output format %q (want json, yaml or text)", c.Output.Format)
	}
	return nil
}
