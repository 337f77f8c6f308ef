// Package config loads the extraction configuration: per-state YAML files
// describing the source tables, and runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
)

// Settings holds runtime (non-dataset) configuration, populated from
// environment variables.
type Settings struct {
	LogLevel  string `split_words:"true" default:"info"`
	LogFormat string `split_words:"true" default:"json"`

	// FetchTimeout bounds one source document fetch; hitting it is a fatal
	// unit-level error, never a retry.
	FetchTimeout time.Duration `split_words:"true" default:"30s"`

	// HTTPAddr enables the /healthz and /metrics server when set.
	HTTPAddr string `envconfig:"HTTP_ADDR"`

	// Kafka publishing of assembled records, enabled when brokers are set.
	KafkaBrokers []string `split_words:"true"`
	KafkaTopic   string   `split_words:"true" default:"nuclear-test-records"`

	// Mapbox reverse geocoding, enabled when a token is set.
	MapboxToken     string        `split_words:"true"`
	MapboxTimeout   time.Duration `split_words:"true" default:"5s"`
	MapboxCacheSize int           `split_words:"true" default:"1000"`
}

// GeocodeEnabled reports whether reverse geocoding enrichment is configured.
func (s *Settings) GeocodeEnabled() bool { return s.MapboxToken != "" }

// KafkaEnabled reports whether record publishing is configured.
func (s *Settings) KafkaEnabled() bool { return len(s.KafkaBrokers) > 0 }

// LoadSettings reads runtime settings from the environment, applying defaults
// where unset.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if s.FetchTimeout <= 0 {
		return nil, &ConfigError{Err: fmt.Errorf("FETCH_TIMEOUT must be positive")}
	}
	return &s, nil
}

// ConfigError marks malformed or missing configuration, detected before any
// fetch happens.
type ConfigError struct {
	File string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("config %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Source is one URL plus the line range selecting the table body within the
// fetched document.
type Source struct {
	URL       string `yaml:"url" validate:"required,url"`
	FirstLine int    `yaml:"first_line" validate:"gte=0"`
	// LastLine follows slice semantics: exclusive, and negative values count
	// from the end of the document (-1 drops the final line).
	LastLine int `yaml:"last_line" validate:"required"`
}

// ColumnConfig is one ordered column entry of a state's table schema.
type ColumnConfig struct {
	Name      string `yaml:"name" validate:"required"`
	Start     int    `yaml:"start" validate:"gte=0"`
	End       int    `yaml:"end" validate:"required,gtfield=Start"`
	Type      string `yaml:"type" validate:"required,oneof=int float str"`
	Normalize string `yaml:"normalize" validate:"omitempty,oneof=yield est_yield vent crater"`
}

// TimestampConfig names the columns combined into DATETIME. Empty fields fall
// back to the archive defaults (YEAR, MON, DAY, TIME).
type TimestampConfig struct {
	Year  string `yaml:"year"`
	Month string `yaml:"month"`
	Day   string `yaml:"day"`
	Time  string `yaml:"time"`
}

// GeocodeConfig names the coordinate columns used for enrichment.
type GeocodeConfig struct {
	Lat string `yaml:"lat" validate:"required"`
	Lon string `yaml:"lon" validate:"required"`
}

// RawOverrideConfig, ReplacementConfig, SpilloverConfig and
// NormalizedOverrideConfig mirror the domain correction tables. Keeping them
// in configuration means new documented fixes never touch pipeline code.
type RawOverrideConfig struct {
	ID    int    `yaml:"id" validate:"required"`
	Field string `yaml:"field" validate:"required"`
	Value string `yaml:"value" validate:"required"`
	Note  string `yaml:"note"`
}

type ReplacementConfig struct {
	Field string `yaml:"field" validate:"required"`
	From  string `yaml:"from" validate:"required"`
	To    string `yaml:"to" validate:"required"`
}

type SpilloverConfig struct {
	From    string   `yaml:"from" validate:"required"`
	Into    []string `yaml:"into" validate:"required,min=1"`
	Allowed []string `yaml:"allowed" validate:"required,min=1"`
}

type NormalizedOverrideConfig struct {
	ID       int     `yaml:"id" validate:"required"`
	Field    string  `yaml:"field" validate:"required"`
	Value    float64 `yaml:"value"`
	Occurred bool    `yaml:"occurred"`
	Remark   string  `yaml:"remark"`
}

// CorrectionsConfig groups all documented repairs for one state.
type CorrectionsConfig struct {
	Raw          []RawOverrideConfig        `yaml:"raw" validate:"dive"`
	Replacements []ReplacementConfig        `yaml:"replacements" validate:"dive"`
	Spillover    []SpilloverConfig          `yaml:"spillover" validate:"dive"`
	Normalized   []NormalizedOverrideConfig `yaml:"normalized" validate:"dive"`
}

// StateConfig is the full extraction configuration for one state.
type StateConfig struct {
	State       string            `yaml:"state" validate:"required"`
	IDColumn    string            `yaml:"id_column"`
	Sources     []Source          `yaml:"sources" validate:"required,min=1,dive"`
	Columns     []ColumnConfig    `yaml:"columns" validate:"required,min=1,dive"`
	Timestamp   TimestampConfig   `yaml:"timestamp"`
	Geocode     *GeocodeConfig    `yaml:"geocode"`
	Corrections CorrectionsConfig `yaml:"corrections"`
}

// Schema converts the column list to the domain schema.
func (c *StateConfig) Schema() domain.ColumnSchema {
	schema := make(domain.ColumnSchema, len(c.Columns))
	for i, col := range c.Columns {
		schema[i] = domain.Column{
			Name:      col.Name,
			Start:     col.Start,
			End:       col.End,
			DType:     domain.DType(col.Type),
			Normalize: domain.NormalizeKind(col.Normalize),
		}
	}
	return schema
}

// DomainCorrections converts the correction tables to their domain form.
func (c *StateConfig) DomainCorrections() domain.Corrections {
	out := domain.Corrections{}
	for _, ov := range c.Corrections.Raw {
		out.Raw = append(out.Raw, domain.RawOverride(ov))
	}
	for _, rep := range c.Corrections.Replacements {
		out.Replacements = append(out.Replacements, domain.Replacement(rep))
	}
	for _, sp := range c.Corrections.Spillover {
		out.Spillovers = append(out.Spillovers, domain.SpilloverRule(sp))
	}
	for _, ov := range c.Corrections.Normalized {
		out.Normalized = append(out.Normalized, domain.NormalizedOverride(ov))
	}
	return out
}

// TimestampSpec returns the timestamp column names with defaults applied.
func (c *StateConfig) TimestampSpec() domain.TimestampSpec {
	spec := domain.DefaultTimestampSpec()
	if c.Timestamp.Year != "" {
		spec.Year = c.Timestamp.Year
	}
	if c.Timestamp.Month != "" {
		spec.Month = c.Timestamp.Month
	}
	if c.Timestamp.Day != "" {
		spec.Day = c.Timestamp.Day
	}
	if c.Timestamp.Time != "" {
		spec.Time = c.Timestamp.Time
	}
	return spec
}

// IDColumnName returns the record-id column, defaulting to "ID".
func (c *StateConfig) IDColumnName() string {
	if c.IDColumn != "" {
		return c.IDColumn
	}
	return "ID"
}

// LoadStates reads one YAML file or every *.yaml/*.yml file in a directory
// (sorted by name, which fixes the configured state order) and validates the
// result.
func LoadStates(path string) ([]*StateConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ConfigError{File: path, Err: err}
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, &ConfigError{File: path, Err: err}
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
				continue
			}
			files = append(files, filepath.Join(path, name))
		}
		sort.Strings(files)
		if len(files) == 0 {
			return nil, &ConfigError{File: path, Err: fmt.Errorf("no yaml files in directory")}
		}
	} else {
		files = []string{path}
	}

	states := make([]*StateConfig, 0, len(files))
	for _, file := range files {
		st, err := loadStateFile(file)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}

func loadStateFile(file string) (*StateConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &ConfigError{File: file, Err: err}
	}

	var st StateConfig
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, &ConfigError{File: file, Err: err}
	}
	if err := st.Validate(); err != nil {
		return nil, &ConfigError{File: file, Err: err}
	}
	return &st, nil
}

// Validate checks struct constraints plus the cross-field rules the tag
// language cannot express.
func (c *StateConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	schema := c.Schema()
	if err := schema.Validate(); err != nil {
		return err
	}
	if err := c.TimestampSpec().Validate(schema); err != nil {
		return err
	}

	for _, src := range c.Sources {
		if src.LastLine > 0 && src.FirstLine >= src.LastLine {
			return fmt.Errorf("source %s: empty line range [%d,%d)", src.URL, src.FirstLine, src.LastLine)
		}
	}

	idCol, ok := schema.Find(c.IDColumnName())
	if !ok {
		return fmt.Errorf("id column %q not in schema", c.IDColumnName())
	}
	if idCol.DType != domain.DTypeInt {
		return fmt.Errorf("id column %q must be int", idCol.Name)
	}

	for _, sp := range c.Corrections.Spillover {
		if _, ok := schema.Find(sp.From); !ok {
			return fmt.Errorf("spillover rule: source column %q not in schema", sp.From)
		}
		for _, name := range sp.Into {
			if _, ok := schema.Find(name); !ok {
				return fmt.Errorf("spillover rule: target column %q not in schema", name)
			}
		}
	}

	if c.Geocode != nil {
		for _, name := range []string{c.Geocode.Lat, c.Geocode.Lon} {
			col, ok := schema.Find(name)
			if !ok {
				return fmt.Errorf("geocode column %q not in schema", name)
			}
			if col.DType != domain.DTypeFloat {
				return fmt.Errorf("geocode column %q must be float", name)
			}
		}
	}
	return nil
}
