package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/class-widener/async"
	"github.com/wippyai/class-widener/errors"
	"github.com/wippyai/class-widener/widener"
)

func (a *app) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Work with access widener rule files",
	}

	var verbose bool
	check := &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse rule files and report problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRulesCheck(cmd.OutOrStdout(), args, verbose)
		},
	}
	check.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every rule")
	cmd.AddCommand(check)
	return cmd
}

// runRulesCheck parses every file concurrently and reports each one in the
// order given. Files are checked independently; the merged set is checked
// for namespace conflicts at the end.
func (a *app) runRulesCheck(w io.Writer, paths []string, verbose bool) error {
	results := make([]*async.Result[*widener.Ruleset], len(paths))
	for i, p := range paths {
		results[i] = async.Run(async.GoExecutor{}, func() (*widener.Ruleset, error) {
			return widener.LoadRules(p)
		})
	}

	failed := 0
	merged := widener.NewRulesetBuilder()
	for i, r := range results {
		rs, err := r.Get()
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s %s\n", errorStyle.Render("FAIL"), err)
			continue
		}
		fmt.Fprintf(w, "%s %s: %d rules, namespace %s\n",
			resultStyle.Render("ok"), paths[i], rs.Len(), rs.Namespace())
		if verbose {
			for _, rule := range rs.Rules() {
				fmt.Fprintf(w, "  %s %s\n", typeStyle.Render(rule.Transitions.String()), rule.Target)
			}
		}
		if err := merged.Merge(rs); err != nil {
			failed++
			fmt.Fprintf(w, "%s %s\n", errorStyle.Render("FAIL"), err)
		}
	}

	if failed > 0 {
		return errors.New(errors.PhaseRules, errors.KindInvalidInput).
			Detail("%d of %d rule files failed", failed, len(paths)).
			Build()
	}
	return nil
}
