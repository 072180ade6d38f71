// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <version>",
	Short: "Export a compiled dictionary to YAML or JSON",
	Long: `Export writes every lookup record of a nomenclature version to
<store-dir>/export/<version>.yaml or <version>.json. The version is compiled
first if the store does not hold it yet.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the nomenclature versions held in the store",
	Args:  cobra.NoArgs,
	RunE:  runVersions,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionsCmd)
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
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

	s, err := rt.requireStore()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := rt.manager.Dictionary(ctx, args[0]); err != nil {
		return err
	}

	var path string
	switch format {
	case "json":
		path, err = s.ExportJSON(ctx, args[0])
	default:
		path, err = s.ExportYAML(ctx, args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported to %s\n", path)
	return nil
}

func runVersions(cmd *cobra.Command, args []string) (err error) {
	rt, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.close(); err == nil {
			err = cerr
		}
	}()

	s, err := rt.requireStore()
	if err != nil {
		return err
	}
	versions, err := s.Versions(context.Background())
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Println("No versions stored.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-8s  %s\n", "Version", "Records", "Compiled")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 45))
	for _, v := range versions {
		fmt.Fprintf(os.Stdout, "%-10s  %-8d  %s\n", v.Version, v.Records, v.CompiledAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
