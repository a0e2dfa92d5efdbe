package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"yashubustudio/hccmapper/hcc"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLabsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labs",
		Short: "Manage the lab-to-code table file",
	}

	var (
		path  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in lab table to an editable file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.loadConfig()
			if err != nil {
				return err
			}
			target := path
			if target == "" {
				target = cfg.LabTablePath
			}
			if target == "" {
				return errors.New("no --path given and labTablePath is not configured")
			}
			if err := hcc.WriteLabTable(target, hcc.DefaultLabRules(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "Lab table file (default from config)")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the lab table in effect, in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.loadConfig()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), hcc.LoadLabTable(cfg.LabTablePath, logger).Rules())
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

type patternView struct {
	Category hcc.Category `json:"category"`
	Pattern  string       `json:"pattern"`
	Group    int          `json:"group,omitempty"`
}

func newPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the term extraction patterns in catalog order",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := hcc.DefaultCatalog().Rules()
			out := make([]patternView, len(rules))
			for i, r := range rules {
				out[i] = patternView{Category: r.Category, Pattern: r.Pattern.String(), Group: r.Group}
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration file",
	}

	var (
		path  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration (file, defaults and HCC_* overrides)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.loadConfig()
			if err != nil {
				return err
			}
			target := path
			if target == "" {
				target = root.configPath
			}
			if target == "" {
				target = hcc.DefaultConfigFile
			}
			if !force {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("%w: %s", hcc.ErrFileExists, target)
				}
			}
			if err := hcc.SaveConfig(target, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "Config file (default: --config or ./config.json)")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.loadConfig()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
