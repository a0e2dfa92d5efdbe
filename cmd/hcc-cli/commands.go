package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"yashubustudio/hccmapper/hcc"
	"yashubustudio/hccmapper/internal/batch"
	"yashubustudio/hccmapper/internal/server"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		input  string
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline on one document and write a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return errors.New("missing required --input file")
			}
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "csv" {
				return fmt.Errorf("unsupported --format %q", format)
			}
			rt, err := root.setup()
			if err != nil {
				return err
			}
			defer rt.Close()

			text, err := hcc.ReadDocument(input)
			if err != nil {
				return err
			}
			report, err := rt.svc.Process(cmd.Context(), hcc.DocumentName(input), text)
			if err != nil {
				return fmt.Errorf("process: %w", err)
			}
			if format == "csv" {
				return writeCSV(cmd, output, report.HCCCodes)
			}
			return hcc.WriteReport(output, report)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Text document (.txt or .gz)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or csv")
	cmd.Flags().StringVar(&output, "output", "-", "Output path, - for stdout")
	return cmd
}

func writeCSV(cmd *cobra.Command, output string, results []hcc.ClassifiedResult) error {
	if output == "-" {
		return hcc.WriteResultsCSV(cmd.OutOrStdout(), results)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := hcc.WriteResultsCSV(f, results); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "List the candidate terms found in one document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return errors.New("missing required --input file")
			}
			rt, err := root.setup()
			if err != nil {
				return err
			}
			defer rt.Close()

			text, err := hcc.ReadDocument(input)
			if err != nil {
				return err
			}
			terms, err := rt.svc.Extract(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			return hcc.WriteTerms(output, terms)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Text document (.txt or .gz)")
	cmd.Flags().StringVar(&output, "output", "-", "Output path, - for stdout")
	return cmd
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		inputDir   string
		outputDir  string
		workers    int
		noProgress bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process every document in a directory, one report per document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputDir == "" || outputDir == "" {
				return errors.New("--input-dir and --output-dir are required")
			}
			rt, err := root.setup()
			if err != nil {
				return err
			}
			defer rt.Close()

			paths, err := hcc.ListDocuments(inputDir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no documents found in %s", inputDir)
			}
			if workers <= 0 {
				workers = rt.cfg.Batch.Workers
			}

			var mgr batch.Manager = &batch.NoopManager{}
			if !noProgress {
				mgr = batch.NewMPBManager(cmd.ErrOrStderr())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool := &batch.Pool{
				Workers:   workers,
				Processor: rt.svc,
				OutputDir: outputDir,
				Progress:  mgr,
				Logger:    rt.logger,
			}
			results := pool.Run(ctx, paths)
			if n := batch.Failed(results); n > 0 {
				return fmt.Errorf("%d of %d documents failed", n, len(results))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d documents into %s\n", len(results), outputDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&inputDir, "input-dir", "", "Directory of .txt/.gz documents")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for report files")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent documents (default from config)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bars")
	return cmd
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.setup()
			if err != nil {
				return err
			}
			defer rt.Close()

			cfg := rt.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(rt.svc, cfg, rt.logger).Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func newCodebookCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codebook",
		Short: "Manage the HCC codebook file",
	}

	var (
		path  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in codebook to an editable file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.loadConfig()
			if err != nil {
				return err
			}
			target := path
			if target == "" {
				target = cfg.CodebookPath
			}
			if target == "" {
				return errors.New("no --path given and codebookPath is not configured")
			}
			if err := hcc.WriteCodebook(target, hcc.DefaultCodeEntries(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "Codebook file (default from config)")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the codebook in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.loadConfig()
			if err != nil {
				return err
			}
			cb := hcc.LoadCodebook(cfg.CodebookPath, logger)
			return printJSON(cmd.OutOrStdout(), struct {
				Source  string                   `json:"source"`
				Entries map[string]hcc.CodeEntry `json:"entries"`
			}{cb.Source(), cb.Entries()})
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
