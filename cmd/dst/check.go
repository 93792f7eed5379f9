package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mikedlowis/data-structures/pkg/mem"
	"github.com/mikedlowis/data-structures/pkg/rbt"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check value [value ...]",
		Short: "Build a tree from integer arguments and validate it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
}

func runCheck(args []string) error {
	values := make([]int64, 0, len(args))

	for _, arg := range args {
		value, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("parse value %q: %w", arg, err)
		}

		values = append(values, value)
	}

	tree := rbt.New(compareBoxes)
	defer mem.Release(tree)

	for _, value := range values {
		box := mem.NewBox(value)
		tree.Insert(box)
		mem.Release(box)

		status := rbt.Check(tree)
		if status != rbt.StatusOK {
			color.New(color.FgRed).Fprintf(os.Stdout, "Invariants broken after inserting %d: %s\n", value, status)

			return fmt.Errorf("%w after inserting %d: %s", ErrInvariantViolated, value, status)
		}
	}

	color.New(color.FgGreen).Fprintf(os.Stdout, "Tree is valid (%d values inserted)\n", len(values))

	return nil
}
