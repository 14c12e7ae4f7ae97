// Package main provides the homology command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cobra.OnInitialize(initConfig)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "homology",
		Short: "Resolve orthologous genes across species",
		Long: `homology resolves orthologous genes: given gene names, a source
organism, and a target organism, it queries the OrthoDB ortholog graph,
ranks candidate orthologs, and reports genomic coordinates for every
gene involved.`,
		Example: `  homology orthologs MTOR --from "homo sapiens" --to "mus musculus"
  homology orthologs NFYA NFYB --from "homo sapiens" --to "caenorhabditis elegans" --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newOrthologsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("homology version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads ~/.homology.yaml if present. A missing config file
// is fine; all keys have defaults.
func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	cfg := filepath.Join(home, ".homology.yaml")
	if _, err := os.Stat(cfg); err != nil {
		return
	}
	viper.SetConfigFile(cfg)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
	}
}
