package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eweitz/homology/internal/homology"
	"github.com/eweitz/homology/internal/output"
	"github.com/eweitz/homology/internal/taxon"
)

func newOrthologsCmd() *cobra.Command {
	var (
		from       string
		to         []string
		format     string
		outputFile string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "orthologs <gene> [gene...]",
		Short: "Find orthologs of genes in another organism",
		Long: `Find orthologs of one or more genes from a source organism in a
target organism, with genomic coordinates for every gene. Candidate
orthologs are ranked by similarity to the source gene.`,
		Example: `  homology orthologs MTOR --from "homo sapiens" --to "mus musculus"
  homology orthologs MTOR BRCA1 --from "homo sapiens" --to "danio rerio" -f json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrthologs(cmd.Context(), args, from, to, format, outputFile, verbose)
		},
	}

	cmd.Flags().StringVar(&from, "from", "homo sapiens", "Source organism scientific name")
	cmd.Flags().StringArrayVar(&to, "to", nil, "Target organism scientific name (repeatable; only the first is resolved)")
	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, json")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.MarkFlagRequired("to")

	return cmd
}

func runOrthologs(ctx context.Context, genes []string, from string, to []string, format, outputFile string, verbose bool) error {
	logger := zap.NewNop()
	if verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer logger.Sync()
	}

	for _, organism := range append([]string{from}, to...) {
		if !taxon.Supported(organism) {
			logger.Warn("organism not in the taxonomy registry; matching unscoped",
				zap.String("organism", organism))
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}

	resolver := homology.New(homology.Config{
		SPARQLBaseURL:     viper.GetString("endpoints.sparql"),
		DetailBaseURL:     viper.GetString("endpoints.orthodb"),
		MyGeneBaseURL:     viper.GetString("endpoints.mygene"),
		EUtilsBaseURL:     viper.GetString("endpoints.eutils"),
		DetailConcurrency: viper.GetInt("limiter.concurrency"),
		DetailInterval:    viper.GetDuration("limiter.interval"),
	})
	resolver.SetLogger(logger)

	results, err := resolver.Resolve(ctx, genes, from, to)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()
	}

	switch format {
	case "json":
		return output.WriteJSON(out, results)
	case "tab":
		tw := output.NewTabWriter(out)
		if err := tw.WriteHeader(); err != nil {
			return err
		}
		for _, res := range results {
			if err := tw.Write(res); err != nil {
				return err
			}
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
