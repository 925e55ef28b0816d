// Command dioph drives the Diophantine-equation elimination engine
// against a small text description of variables, terms, and bounds. It
// exists to exercise pkg/dioph end to end against pkg/refsolver's
// reference LRA implementation; it is not the production integration
// (that is the surrounding MILP solver's job).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitrdm/dioph/internal/batch"
	"github.com/gitrdm/dioph/pkg/dioph"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dioph",
	Short: "Run the Diophantine elimination engine against a problem file",
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check a single problem file for integer feasibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, expl, err := checkFile(args[0])
		if err != nil {
			return err
		}
		printResult(args[0], outcome, expl)
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [file...]",
	Short: "Check multiple problem files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")
		type result struct {
			outcome dioph.Outcome
			expl    dioph.Explanation
			err     error
		}
		results, _ := batch.Run(context.Background(), workers, len(args), func(i int) result {
			o, e, err := checkFile(args[i])
			return result{o, e, err}
		})
		failed := false
		for i, r := range results {
			if r.err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", args[i], r.err)
				failed = true
				continue
			}
			printResult(args[i], r.outcome, r.expl)
		}
		if failed {
			return fmt.Errorf("one or more problem files failed to parse")
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Int("workers", 0, "worker count (default: number of CPUs)")
	rootCmd.AddCommand(checkCmd, batchCmd)
}

func checkFile(path string) (dioph.Outcome, dioph.Explanation, error) {
	f, err := os.Open(path)
	if err != nil {
		return dioph.Undef, dioph.Explanation{}, err
	}
	defer f.Close()

	p, err := parseProblem(f)
	if err != nil {
		return dioph.Undef, dioph.Explanation{}, err
	}

	engine, _ := p.Build(dioph.Settings{})

	outcome := dioph.Undef
	for i := 0; i < 64; i++ {
		outcome = engine.Check()
		if outcome != dioph.BranchOutcome {
			break
		}
	}

	var expl dioph.Explanation
	if outcome == dioph.Conflict || outcome == dioph.BranchOutcome {
		engine.Explain(&expl)
	}
	return outcome, expl, nil
}

func printResult(path string, outcome dioph.Outcome, expl dioph.Explanation) {
	fmt.Printf("%s: %s\n", path, outcome)
	if len(expl.Indices) > 0 {
		fmt.Printf("  explanation: %v\n", expl.Indices)
	}
}
