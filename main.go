package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/benjaminjkraft/wordle-openers/internal/config"
	"github.com/benjaminjkraft/wordle-openers/internal/memo"
	"github.com/benjaminjkraft/wordle-openers/internal/solver"
	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

// options holds what the subcommands share: flags that feed the config, and
// the state set up from them.
type options struct {
	configPath string
	cpuProfile string

	cfg    config.Config
	logger zerolog.Logger
	runID  string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:          "wordle-openers",
		Short:        "Find the Wordle opener with the lowest expected number of guesses",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "YAML config file")
	pf.StringVar(&o.cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	pf.String("answers", "", "answer word list")
	pf.String("guesses", "", "guess word list")
	pf.Int("num-answers", 0, "exact number of words in the answer list")
	pf.Int("num-guesses", 0, "exact number of words in the guess list")
	pf.Int("workers", 0, "worker goroutines (0 for one per CPU)")
	pf.String("log-level", "", "zerolog level")

	root.AddCommand(newSolveCmd(o), newReplayCmd(o), newPatternCmd())
	return root
}

// setup loads the config, applies flag overrides and builds the logger.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("answers") {
		cfg.Corpus.AnswersPath, _ = flags.GetString("answers")
	}
	if flags.Changed("guesses") {
		cfg.Corpus.GuessesPath, _ = flags.GetString("guesses")
	}
	if flags.Changed("num-answers") {
		cfg.Corpus.NumAnswers, _ = flags.GetInt("num-answers")
	}
	if flags.Changed("num-guesses") {
		cfg.Corpus.NumGuesses, _ = flags.GetInt("num-guesses")
	}
	if flags.Changed("workers") {
		cfg.Search.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("log-level") {
		cfg.Observability.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("metrics-addr") {
		cfg.Observability.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("trace-file") {
		cfg.Observability.TraceFile, _ = flags.GetString("trace-file")
	}
	if flags.Changed("progress") {
		cfg.Observability.Progress, _ = flags.GetBool("progress")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.Observability.LogLevel)
	if err != nil {
		return err
	}
	o.runID = uuid.NewString()
	o.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Str("run", o.runID[:8]).
		Logger()
	return nil
}

// startProfile starts a CPU profile if one was asked for. The returned func
// stops it.
func (o *options) startProfile() (func(), error) {
	if o.cpuProfile == "" {
		return func() {}, nil
	}
	f, err := os.Create(o.cpuProfile)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

// buildSolver loads both corpora, builds the pattern table and an empty
// cache.
func (o *options) buildSolver() (*solver.Solver, error) {
	corpus := o.cfg.Corpus
	answers, err := wordle.LoadCorpus(corpus.AnswersPath, corpus.NumAnswers)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	guesses, err := wordle.LoadCorpus(corpus.GuessesPath, corpus.NumGuesses)
	if err != nil {
		return nil, fmt.Errorf("load guesses: %w", err)
	}

	start := time.Now()
	oracle, err := wordle.NewOracle(answers, guesses)
	if err != nil {
		return nil, err
	}
	o.logger.Info().
		Int("answers", oracle.NumAnswers()).
		Int("guesses", oracle.NumGuesses()).
		Dur("took", time.Since(start)).
		Msg("built pattern table")

	search := o.cfg.Search
	cache := memo.New(search.Horizon, search.CleanHint, search.TaintedHint)
	return solver.New(oracle, cache, solver.Options{
		Horizon:        search.Horizon,
		FailCost:       search.FailCost,
		PruneThreshold: search.PruneThreshold,
	}), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
