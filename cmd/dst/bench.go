package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mikedlowis/data-structures/pkg/mem"
	"github.com/mikedlowis/data-structures/pkg/rbt"
)

// ErrInvariantViolated indicates the validator rejected the tree between
// bench phases.
var ErrInvariantViolated = errors.New("tree invariants violated")

// ErrLeaksDetected indicates the tracker still held live objects after the
// bench released everything.
var ErrLeaksDetected = errors.New("memory leaks detected")

const defaultBenchCount = 100_000

func newBenchCommand() *cobra.Command {
	var (
		count int
		seed  int64
		track bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time insert/lookup/delete phases over boxed integers",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBench(count, seed, track || viper.GetBool("track"))
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", defaultBenchCount, "number of values")
	cmd.Flags().Int64Var(&seed, "seed", 42, "PRNG seed")
	cmd.Flags().BoolVar(&track, "track", false, "enable the live-allocation tracker and leak report (env: DST_TRACK)")

	return cmd
}

func compareBoxes(a, b mem.Managed) int {
	av := a.(*mem.Box).Value()
	bv := b.(*mem.Box).Value()

	switch {
	case av == bv:
		return 0
	case av < bv:
		return -1
	default:
		return 1
	}
}

type benchPhase struct {
	name     string
	ops      int
	duration time.Duration
}

func runBench(count int, seed int64, track bool) error {
	var tracker *mem.Tracker
	if track {
		tracker = mem.NewTracker()
		mem.SetObserver(tracker)

		defer mem.SetObserver(nil)

		slog.Debug("leak tracking enabled")
	}

	tree := rbt.New(compareBoxes)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // bench data, not crypto
	values := rng.Perm(count)

	var phases []benchPhase

	insertStart := time.Now()

	for _, value := range values {
		box := mem.NewBox(int64(value))
		tree.Insert(box)
		mem.Release(box)
	}

	phases = append(phases, benchPhase{name: "insert", ops: count, duration: time.Since(insertStart)})

	err := validate(tree, "insert")
	if err != nil {
		return err
	}

	lookupStart := time.Now()

	for _, value := range values {
		probe := mem.NewBox(int64(value))
		if tree.Lookup(probe) == nil {
			mem.Release(probe)

			return fmt.Errorf("%w: value %d vanished", ErrInvariantViolated, value)
		}

		mem.Release(probe)
	}

	phases = append(phases, benchPhase{name: "lookup", ops: count, duration: time.Since(lookupStart)})

	deleteStart := time.Now()

	for _, value := range values {
		probe := mem.NewBox(int64(value))
		tree.Delete(probe)
		mem.Release(probe)
	}

	phases = append(phases, benchPhase{name: "delete", ops: count, duration: time.Since(deleteStart)})

	err = validate(tree, "delete")
	if err != nil {
		return err
	}

	mem.Release(tree)
	renderPhases(phases)

	if tracker != nil {
		if tracker.WriteReport(os.Stdout) {
			return ErrLeaksDetected
		}

		color.New(color.FgGreen).Fprintf(os.Stdout, "No leaks: %s allocations, all released\n",
			humanize.Comma(int64(tracker.Allocations()))) //nolint:gosec // counter fits in int64
	}

	return nil
}

func validate(tree *rbt.Tree, phase string) error {
	status := rbt.Check(tree)
	if status != rbt.StatusOK {
		return fmt.Errorf("%w after %s: %s", ErrInvariantViolated, phase, status)
	}

	slog.Debug("validator all-clear", "phase", phase)

	return nil
}

func renderPhases(phases []benchPhase) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"Phase", "Ops", "Duration", "Ops/sec"})

	for _, phase := range phases {
		opsPerSec := float64(phase.ops) / phase.duration.Seconds()
		tbl.AppendRow(table.Row{
			phase.name,
			humanize.Comma(int64(phase.ops)),
			phase.duration.Round(time.Microsecond),
			humanize.CommafWithDigits(opsPerSec, 0),
		})
	}

	tbl.Render()
}
