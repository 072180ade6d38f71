// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/donor-match/internal/compile"
)

var compileCmd = &cobra.Command{
	Use:   "compile <version>",
	Short: "Compile the matching dictionary for a nomenclature version",
	Long: `Compile loads the reference dataset for a nomenclature version, expands
every serology and allele into its matching lookup records, and writes the
resulting dictionary to the store, replacing any earlier copy.

Names that resolve to no allele are omitted and counted in the summary;
inconsistent reference data fails the whole version.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().Bool("list-unresolved", false, "print every omitted lookup name")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) (err error) {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.close(); err == nil {
			err = cerr
		}
	}()

	ctx := context.Background()
	ds, err := rt.source.Load(ctx, args[0])
	if err != nil {
		return err
	}

	dict, summary, err := compile.Compile(ctx, ds, rt.compileOptions())
	if err != nil {
		return err
	}
	if rt.store != nil {
		if err := rt.store.Save(ctx, dict); err != nil {
			return err
		}
	}

	listUnresolved, _ := cmd.Flags().GetBool("list-unresolved")
	printSummary(os.Stdout, summary, listUnresolved)
	return nil
}

func printSummary(w io.Writer, s compile.Summary, listUnresolved bool) {
	fmt.Fprintf(w, "version %s compiled in %v\n", s.Version, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  serologies:        %d\n", s.Serologies)
	fmt.Fprintf(w, "  alleles:           %d\n", s.Alleles)
	fmt.Fprintf(w, "  serology records:  %d\n", s.SerologyRecords)
	fmt.Fprintf(w, "  molecular records: %d\n", s.MolecularRecords)
	fmt.Fprintf(w, "  unresolved names:  %d\n", len(s.Unresolved))
	fmt.Fprintf(w, "  invalid names:     %d\n", len(s.InvalidNames))

	if listUnresolved {
		for _, u := range s.Unresolved {
			fmt.Fprintf(w, "    %s%s\n", u.Locus.MolecularName(), u.Name)
		}
	}
	for _, err := range s.InvalidNames {
		fmt.Fprintf(w, "    invalid: %v\n", err)
	}
}
