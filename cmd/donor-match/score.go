// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/donor-match/internal/scoring"
	"github.com/pdiddy/donor-match/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score <version> <locus> <patient1> <patient2> <donor1> <donor2>",
	Short: "Classify a donor's typings at one locus against a patient's",
	Long: `Score compares a patient's two typings at a locus with a donor's two
typings, trying both pairings of the donor's positions, and reports the best
match confidence and grade for each patient position.

Typings are written as:
  01:01:01:01, A*01:01   molecular names
  01:01/01:02            allele strings
  01:XX                  first-field (XX) codes
  9, A9                  serology names
  -                      untyped`,
	Args: cobra.ExactArgs(6),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(scoreCmd)
}

type positionOutput struct {
	Position    int    `json:"position"`
	Confidence  string `json:"confidence"`
	Grade       string `json:"grade"`
	Orientation string `json:"orientation"`
}

func runScore(cmd *cobra.Command, args []string) (err error) {
	locus, err := types.ParseLocus(args[1])
	if err != nil {
		return err
	}

	rt, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.close(); err == nil {
			err = cerr
		}
	}()

	dict, err := rt.manager.Dictionary(context.Background(), args[0])
	if err != nil {
		return err
	}

	infos := make([]types.ScoringInfo, 4)
	for i, arg := range args[2:] {
		if infos[i], err = parseTyping(dict, locus, arg); err != nil {
			return err
		}
	}

	scorer := scoring.NewScorer(rt.log, rt.metrics)
	res, err := scorer.ClassifyLocus(locus,
		scoring.LocusPair{Position1: infos[0], Position2: infos[1]},
		scoring.LocusPair{Position1: infos[2], Position2: infos[3]},
	)
	if err != nil {
		return err
	}

	out := []positionOutput{
		{1, res.Position1.Confidence.String(), res.Position1.Grade.String(), string(res.Position1.Orientation)},
		{2, res.Position2.Confidence.String(), res.Position2.Grade.String(), string(res.Position2.Orientation)},
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-10s  %-10s  %s\n", "Position", "Confidence", "Grade", "Orientation")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 45))
	for _, p := range out {
		fmt.Fprintf(os.Stdout, "%-8d  %-10s  %-10s  %s\n", p.Position, p.Confidence, p.Grade, p.Orientation)
	}
	return nil
}

// parseTyping turns a command-line typing into scoring info. A nil result
// with no error is an untyped position.
func parseTyping(dict scoring.Lookup, locus types.Locus, arg string) (types.ScoringInfo, error) {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "-" || arg == "":
		return nil, nil
	case strings.Contains(arg, "/"):
		return scoring.ResolveAlleleString(dict, locus, arg)
	case strings.HasSuffix(strings.ToUpper(arg), ":XX"):
		return lookupScoring(dict, locus, arg[:len(arg)-len(":XX")], types.MethodMolecular)
	case strings.Contains(arg, ":"):
		return lookupScoring(dict, locus, arg, types.MethodMolecular)
	}

	name := arg
	if prefix := locus.SerologyName(); len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		name = name[len(prefix):]
	}
	return lookupScoring(dict, locus, name, types.MethodSerology)
}

func lookupScoring(dict scoring.Lookup, locus types.Locus, name string, method types.TypingMethod) (types.ScoringInfo, error) {
	info, ok := dict.ScoringLookup(locus, name, method)
	if !ok {
		return nil, &types.UnresolvedNameError{Locus: locus, Name: name}
	}
	return info, nil
}
