// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/donor-match/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <version> <locus> <name>",
	Short: "Show the compiled lookup record for a typing name",
	Long: `Lookup prints what a serology or molecular name matches in one
nomenclature version: its subtype, allele names, P- and G-groups, matching
serologies, and scoring info. The dictionary is loaded from the store or
compiled on demand.`,
	Args: cobra.ExactArgs(3),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("method", "molecular", "typing method of the name: molecular or serology")
	lookupCmd.Flags().Bool("json", false, "output the record as JSON")
	rootCmd.AddCommand(lookupCmd)
}

// lookupOutput is the JSON form of a lookup record.
type lookupOutput struct {
	Key      types.LookupKey    `json:"key"`
	Version  string             `json:"version"`
	Matching types.MatchingInfo `json:"matching"`
	Scoring  json.RawMessage    `json:"scoring,omitempty"`
}

func runLookup(cmd *cobra.Command, args []string) (err error) {
	locus, err := types.ParseLocus(args[1])
	if err != nil {
		return err
	}
	methodFlag, _ := cmd.Flags().GetString("method")
	method, err := types.ParseTypingMethod(methodFlag)
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
	record, ok := dict.Record(types.LookupKey{Locus: locus, Name: args[2], Method: method})
	if !ok {
		return fmt.Errorf("%s name %s not found in version %s", method, args[2], args[0])
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		out := lookupOutput{Key: record.Key, Version: record.Version, Matching: record.Matching}
		if record.Scoring != nil {
			if out.Scoring, err = types.MarshalScoringInfo(record.Scoring); err != nil {
				return err
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printRecord(os.Stdout, record)
	return nil
}

func printRecord(w io.Writer, r types.LookupRecord) {
	m := r.Matching
	fmt.Fprintf(w, "%s (%s, version %s)\n", r.Key.Name, r.Key.Method, r.Version)
	if m.SerologySubtype != "" {
		fmt.Fprintf(w, "  serology subtype:  %s\n", m.SerologySubtype)
	}
	if m.MolecularSubtype != "" {
		fmt.Fprintf(w, "  molecular subtype: %s\n", m.MolecularSubtype)
	}
	printList(w, "alleles", m.AlleleNames)
	printList(w, "P-groups", m.PGroups)
	printList(w, "G-groups", m.GGroups)

	sers := make([]string, len(m.Serologies))
	for i, ms := range m.Serologies {
		sers[i] = ms.Serology.Name
		if ms.IsDirectMatch {
			sers[i] += " (direct)"
		} else if ms.Serology.Subtype != "" {
			sers[i] += " (" + string(ms.Serology.Subtype) + ")"
		}
	}
	printList(w, "serologies", sers)

	if r.Scoring != nil {
		fmt.Fprintf(w, "  scoring:           %s\n", r.Scoring.Kind())
	}
}

func printList(w io.Writer, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(w, "  %-18s %s\n", label+":", strings.Join(values, ", "))
}
