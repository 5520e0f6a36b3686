// Package config loads generation job from a yaml or toml file and merges it with cli overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/umputun/wordsql/pkg/loader"
	"github.com/umputun/wordsql/pkg/sqlgen"
)

// DefaultOutput is the output file name used if nothing set
const DefaultOutput = "results.txt"

// Job defines a single generation job
type Job struct {
	Table     string   `yaml:"table" toml:"table"`           // name of the table to create
	Output    string   `yaml:"output" toml:"output"`         // output file, results.txt by default
	Dialect   string   `yaml:"dialect" toml:"dialect"`       // output dialect, generic by default
	DB        string   `yaml:"db" toml:"db"`                 // optional database connection string to load rows into
	PerColumn bool     `yaml:"per_column" toml:"per_column"` // track unique values per column instead of per table
	Columns   []string `yaml:"columns" toml:"columns"`       // column specs, name:type:constraint
	Wordlists []string `yaml:"wordlists" toml:"wordlists"`   // wordlist specs, column:path:transform
}

// Overrides defines job values passed from cli, empty values don't override
type Overrides struct {
	Table     string
	Output    string
	Dialect   string
	DB        string
	PerColumn bool
	Columns   []string
	Wordlists []string
}

// Load makes Job from the job file (if fname set) and cli overrides. Relative wordlist paths in the job
// file are resolved against the file's directory. Returned job is validated.
func Load(fname string, overrides *Overrides) (res *Job, err error) {
	res = &Job{}
	if fname != "" {
		log.Printf("[DEBUG] request to load job %q", fname)
		data, err := os.ReadFile(fname) // nolint
		if err != nil {
			return nil, fmt.Errorf("can't read job file: %w", err)
		}
		if err = unmarshalJobFile(fname, data, res); err != nil {
			return nil, err
		}
		res.resolvePaths(filepath.Dir(fname))
		log.Printf("[INFO] job %s loaded with %d columns", fname, len(res.Columns))
	}

	res.applyOverrides(overrides)
	if res.Output == "" {
		res.Output = DefaultOutput
	}
	if res.Dialect == "" && res.DB != "" {
		// no dialect set, follow the database
		if res.Dialect, err = loader.DBType(res.DB); err != nil {
			return nil, fmt.Errorf("can't pick dialect for db: %w", err)
		}
		log.Printf("[DEBUG] dialect %s picked for db", res.Dialect)
	}

	if err = res.Validate(); err != nil {
		return nil, fmt.Errorf("job is invalid: %w", err)
	}
	return res, nil
}

// Validate checks job for errors, all problems reported together
func (j *Job) Validate() error {
	errs := new(multierror.Error)
	if j.Table == "" {
		errs = multierror.Append(errs, errors.New("table name is required"))
	}
	if len(j.Columns) == 0 {
		errs = multierror.Append(errs, errors.New("at least one column is required"))
	}
	if len(j.Columns) != len(j.Wordlists) {
		errs = multierror.Append(errs, fmt.Errorf("need a wordlist for each column, got %d columns and %d wordlists",
			len(j.Columns), len(j.Wordlists)))
	}
	if _, err := sqlgen.ByName(j.Dialect); err != nil {
		errs = multierror.Append(errs, err)
	}
	if j.DB != "" && (j.Dialect == "" || strings.EqualFold(j.Dialect, sqlgen.GenericName)) {
		errs = multierror.Append(errs, errors.New("generic dialect can't be loaded into database"))
	}
	return errs.ErrorOrNil()
}

func (j *Job) applyOverrides(o *Overrides) {
	if o == nil {
		return
	}
	if o.Table != "" {
		j.Table = o.Table
	}
	if o.Output != "" {
		j.Output = o.Output
	}
	if o.Dialect != "" {
		j.Dialect = o.Dialect
	}
	if o.DB != "" {
		j.DB = o.DB
	}
	if o.PerColumn {
		j.PerColumn = true
	}
	if len(o.Columns) > 0 {
		j.Columns = o.Columns
	}
	if len(o.Wordlists) > 0 {
		j.Wordlists = o.Wordlists
	}
}

// resolvePaths makes relative wordlist paths relative to the job file's directory
func (j *Job) resolvePaths(dir string) {
	for i, w := range j.Wordlists {
		parts := strings.SplitN(w, ":", 3)
		if len(parts) < 2 || parts[1] == "" || filepath.IsAbs(parts[1]) {
			continue
		}
		parts[1] = filepath.Join(dir, parts[1])
		j.Wordlists[i] = strings.Join(parts, ":")
	}
}

// unmarshalJobFile parses job data, format guessed by file extension, yaml by default
func unmarshalJobFile(fname string, data []byte, res *Job) error {
	switch {
	case strings.HasSuffix(fname, ".yml") || strings.HasSuffix(fname, ".yaml") || !strings.Contains(filepath.Base(fname), "."):
		yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
		yamlDecoder.KnownFields(true) // strict mode, fail on unknown fields
		if err := yamlDecoder.Decode(res); err != nil {
			return fmt.Errorf("can't unmarshal yaml job %s: %w", fname, err)
		}
	case strings.HasSuffix(fname, ".toml"):
		if err := toml.Unmarshal(data, res); err != nil {
			return fmt.Errorf("can't unmarshal toml job %s: %w", fname, err)
		}
	default:
		return fmt.Errorf("unknown job format %s", fname)
	}
	return nil
}
