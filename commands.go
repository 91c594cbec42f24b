package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"

	"github.com/spf13/cobra"

	"github.com/benjaminjkraft/wordle-openers/internal/memo"
	"github.com/benjaminjkraft/wordle-openers/internal/replay"
	"github.com/benjaminjkraft/wordle-openers/internal/scheduler"
	"github.com/benjaminjkraft/wordle-openers/internal/telemetry"
	"github.com/benjaminjkraft/wordle-openers/internal/wordle"
)

func newSolveCmd(o *options) *cobra.Command {
	var openers []string
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Evaluate every opener and report the best",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setup(cmd); err != nil {
				return err
			}
			return o.runSolve(cmd, openers)
		},
	}
	cmd.Flags().StringSliceVar(&openers, "opener", nil, "only evaluate these openers (repeatable)")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().String("trace-file", "", "write one span per opener to this file")
	cmd.Flags().Bool("progress", false, "show a progress bar on stderr")
	return cmd
}

func (o *options) runSolve(cmd *cobra.Command, openerWords []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stopProfile, err := o.startProfile()
	if err != nil {
		return err
	}
	defer stopProfile()

	obs := o.cfg.Observability
	if obs.TraceFile != "" {
		f, err := os.Create(obs.TraceFile)
		if err != nil {
			return fmt.Errorf("create trace file: %w", err)
		}
		defer f.Close()
		shutdown, err := telemetry.StartTracing(f, o.runID)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				o.logger.Warn().Err(err).Msg("flushing traces")
			}
		}()
	}

	s, err := o.buildSolver()
	if err != nil {
		return err
	}
	openers, err := resolveOpeners(s.Oracle(), openerWords)
	if err != nil {
		return err
	}

	var bar io.Writer
	if obs.Progress {
		bar = cmd.ErrOrStderr()
	}
	sched := scheduler.New(s, scheduler.Options{
		Workers: o.cfg.Search.Workers,
		Openers: openers,
		Output:  cmd.OutOrStdout(),
		Bar:     bar,
		Logger:  o.logger,
	})

	if obs.MetricsAddr != "" {
		collector := telemetry.NewCollector(sched, s.Cache())
		go func() {
			if err := telemetry.Serve(ctx, obs.MetricsAddr, collector, o.logger); err != nil {
				o.logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	summary, runErr := sched.Run(ctx)

	out := cmd.OutOrStdout()
	if summary.Best != memo.NoGuess {
		fmt.Fprintf(out, "\nBest opener: %s (%.6f expected guesses)\n", summary.BestWord, summary.BestCost)
	}
	summary.Stats.Print(out)

	clean, tainted := s.Cache().Len()
	o.logger.Info().
		Dur("elapsed", summary.Elapsed).
		Int("openers", len(summary.Results)).
		Int("clean_entries", clean).
		Int("tainted_entries", tainted).
		Msg("search finished")
	return runErr
}

// resolveOpeners maps words to guess indices. No words means every guess.
func resolveOpeners(o *wordle.Oracle, words []string) ([]int, error) {
	if len(words) == 0 {
		return nil, nil
	}
	idx := make([]int, 0, len(words))
	for _, w := range words {
		g, ok := o.GuessIndex(w)
		if !ok {
			return nil, fmt.Errorf("opener %q is not in the guess list", w)
		}
		if !slices.Contains(idx, g) {
			idx = append(idx, g)
		}
	}
	return idx, nil
}

func newReplayCmd(o *options) *cobra.Command {
	var (
		opener  string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Play every answer with the optimal strategy after an opener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setup(cmd); err != nil {
				return err
			}
			return o.runReplay(cmd, opener, verbose)
		},
	}
	cmd.Flags().StringVar(&opener, "opener", "", "opening guess")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every game")
	_ = cmd.MarkFlagRequired("opener")
	return cmd
}

func (o *options) runReplay(cmd *cobra.Command, openerWord string, verbose bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stopProfile, err := o.startProfile()
	if err != nil {
		return err
	}
	defer stopProfile()

	s, err := o.buildSolver()
	if err != nil {
		return err
	}
	opener, ok := s.Oracle().GuessIndex(openerWord)
	if !ok {
		return fmt.Errorf("opener %q is not in the guess list", openerWord)
	}

	r := s.NewSearch().EvaluateOpener(opener)
	o.logger.Info().Str("opener", openerWord).Float64("cost", r.Cost).Int("height", r.Height).Msg("solved opener")

	report, err := replay.PlayAll(ctx, s, opener, o.cfg.Search.Workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verbose {
		targets := make([]string, 0, len(report.Games))
		for t := range report.Games {
			targets = append(targets, t)
		}
		slices.Sort(targets)
		for _, t := range targets {
			fmt.Fprintln(out, report.Games[t])
		}
		fmt.Fprintln(out)
	}
	report.Total.Print(out)
	for _, line := range report.Summary() {
		fmt.Fprintln(out, line)
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("%d answers not solved within %d guesses", len(report.Failed), o.cfg.Search.Horizon+1)
	}
	return nil
}

func newPatternCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pattern GUESS ANSWER",
		Short: "Print the feedback GUESS gets against ANSWER",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, w := range args {
				if !wordle.ValidWord(w) {
					return fmt.Errorf("%q: %w", w, wordle.ErrBadWord)
				}
			}
			p := wordle.Score(args[0], args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", p, p)
			return nil
		},
	}
}
