// Command trec-report generates a TREC property inspection report PDF from a
// JSON inspection record.
//
// # Usage
//
//	trec-report [record.json] [template.pdf] [output.pdf]
//
// All three arguments are optional and default to inspection.json,
// TREC_Template_Blank.pdf, and output_pdf.pdf in the working directory. A
// missing or unreadable template is not an error; pages are drawn from
// scratch instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	trec "github.com/Arrrttyyyys/TREC"
	"github.com/Arrrttyyyys/TREC/record"
)

const (
	defaultRecordPath   = "inspection.json"
	defaultTemplatePath = "TREC_Template_Blank.pdf"
	defaultOutputPath   = "output_pdf.pdf"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		verbose    bool
		noTemplate bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "trec-report [record.json] [template.pdf] [output.pdf]",
		Short:        "Generate a TREC property inspection report PDF",
		Args:         cobra.MaximumNArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			recordPath := defaultRecordPath
			templatePath := defaultTemplatePath
			outputPath := defaultOutputPath
			if len(args) > 0 {
				recordPath = args[0]
			}
			if len(args) > 1 {
				templatePath = args[1]
			}
			if len(args) > 2 {
				outputPath = args[2]
			}
			if noTemplate {
				templatePath = ""
			}

			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
				ReportTimestamp: true,
				TimeFormat:      time.Kitchen,
				Level:           level,
			})

			cfg := trec.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = trec.LoadConfig(configPath); err != nil {
					return err
				}
			}

			rec, err := record.Load(recordPath)
			if err != nil {
				return err
			}

			gen := trec.NewGenerator(
				trec.WithConfig(cfg),
				trec.WithLogger(logger),
				trec.WithTemplatePath(templatePath),
			)
			if err := gen.GenerateFile(cmd.Context(), rec, outputPath); err != nil {
				return err
			}
			logger.Info("report written", "path", outputPath)
			return nil
		},
	}

	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.Flags().BoolVar(&noTemplate, "no-template", false, "draw pages from scratch, ignoring the template PDF")
	root.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file overriding generation defaults")

	return root.ExecuteContext(ctx)
}
