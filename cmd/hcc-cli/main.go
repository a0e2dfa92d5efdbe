package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"yashubustudio/hccmapper/hcc"
	"yashubustudio/hccmapper/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "hcc-cli",
		Short:        "Extract clinical terms from document text and map them to HCC codes",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newExtractCmd(opts))
	root.AddCommand(newBatchCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newCodebookCmd(opts))
	root.AddCommand(newLabsCmd(opts))
	root.AddCommand(newPatternsCmd())
	root.AddCommand(newConfigCmd(opts))
	return root
}

// runtime holds what every command needs after config is loaded.
type runtime struct {
	cfg    hcc.Config
	logger zerolog.Logger
	svc    *hcc.Service
}

func (o *rootOptions) loadConfig() (hcc.Config, zerolog.Logger, error) {
	cfg, err := hcc.LoadConfig(o.configPath)
	if err != nil {
		return cfg, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(logging.Options{Service: "hcc-cli", Env: cfg.Env, Level: cfg.LogLevel})
	return cfg, logger, nil
}

func (o *rootOptions) setup() (*runtime, error) {
	cfg, logger, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	rec, err := hcc.NewRecognizer(cfg.NER)
	if err != nil {
		return nil, fmt.Errorf("init recognizer: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, svc: hcc.NewService(cfg, rec, logger)}, nil
}

func (r *runtime) Close() {
	if err := r.svc.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("close service")
	}
}
