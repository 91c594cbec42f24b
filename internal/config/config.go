// Package config loads search settings from defaults, an optional YAML file
// and WORDLE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type CorpusConfig struct {
	AnswersPath string `yaml:"answers_path"`
	GuessesPath string `yaml:"guesses_path"`
	// NumAnswers and NumGuesses are the exact sizes the files must have.
	NumAnswers int `yaml:"num_answers"`
	NumGuesses int `yaml:"num_guesses"`
}

type SearchConfig struct {
	Workers        int     `yaml:"workers"` // 0 means one per CPU
	Horizon        int     `yaml:"horizon"`
	FailCost       float64 `yaml:"fail_cost"`
	PruneThreshold int     `yaml:"prune_threshold"`
	CleanHint      int     `yaml:"clean_hint"`
	TaintedHint    int     `yaml:"tainted_hint"`
}

type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
	TraceFile   string `yaml:"trace_file"`
	Progress    bool   `yaml:"progress"`
}

type Config struct {
	Corpus        CorpusConfig        `yaml:"corpus"`
	Search        SearchConfig        `yaml:"search"`
	Observability ObservabilityConfig `yaml:"observability"`
}

func Default() Config {
	return Config{
		Corpus: CorpusConfig{
			AnswersPath: "data/answers_small.txt",
			GuessesPath: "data/guesses.txt",
			NumAnswers:  50,
			NumGuesses:  12972,
		},
		Search: SearchConfig{
			Horizon:        6,
			FailCost:       1e9,
			PruneThreshold: 20,
			CleanHint:      1 << 16,
			TaintedHint:    1 << 10,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Load returns the defaults overlaid with the file at path, if it exists, and
// then the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = i
		}
	}

	str("WORDLE_ANSWERS_PATH", &cfg.Corpus.AnswersPath)
	str("WORDLE_GUESSES_PATH", &cfg.Corpus.GuessesPath)
	num("WORDLE_NUM_ANSWERS", &cfg.Corpus.NumAnswers)
	num("WORDLE_NUM_GUESSES", &cfg.Corpus.NumGuesses)

	num("WORDLE_WORKERS", &cfg.Search.Workers)
	num("WORDLE_HORIZON", &cfg.Search.Horizon)
	num("WORDLE_PRUNE_THRESHOLD", &cfg.Search.PruneThreshold)
	num("WORDLE_CLEAN_HINT", &cfg.Search.CleanHint)
	num("WORDLE_TAINTED_HINT", &cfg.Search.TaintedHint)
	if v := os.Getenv("WORDLE_FAIL_COST"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("WORDLE_FAIL_COST: %w", err))
		} else {
			cfg.Search.FailCost = f
		}
	}

	str("WORDLE_LOG_LEVEL", &cfg.Observability.LogLevel)
	str("WORDLE_METRICS_ADDR", &cfg.Observability.MetricsAddr)
	str("WORDLE_TRACE_FILE", &cfg.Observability.TraceFile)
	if v := os.Getenv("WORDLE_PROGRESS"); v != "" {
		cfg.Observability.Progress = v == "true" || v == "1"
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Corpus.AnswersPath != "", "answers_path is required")
	check(c.Corpus.GuessesPath != "", "guesses_path is required")
	check(c.Corpus.NumAnswers >= 1 && c.Corpus.NumAnswers <= wordle.MaxAnswers,
		"num_answers must be between 1 and %d, got %d", wordle.MaxAnswers, c.Corpus.NumAnswers)
	check(c.Corpus.NumGuesses >= 1, "num_guesses must be >= 1, got %d", c.Corpus.NumGuesses)

	check(c.Search.Workers >= 0, "workers must be >= 0, got %d", c.Search.Workers)
	check(c.Search.Horizon >= 1 && c.Search.Horizon < 255,
		"horizon must be between 1 and 254, got %d", c.Search.Horizon)
	check(c.Search.FailCost > 0, "fail_cost must be > 0, got %v", c.Search.FailCost)
	check(c.Search.PruneThreshold >= 0, "prune_threshold must be >= 0, got %d", c.Search.PruneThreshold)
	check(c.Search.CleanHint >= 0 && c.Search.TaintedHint >= 0, "cache hints must be >= 0")

	if _, err := zerolog.ParseLevel(c.Observability.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
