package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/runeditor/internal/config"
	"github.com/1broseidon/runeditor/internal/tui"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the configuration",
	}
	cmd.AddCommand(
		newConfigValidateCmd(opts),
		newConfigPrintCmd(opts),
		newConfigExplainCmd(opts),
		newConfigEditCmd(opts),
	)
	return cmd
}

func newConfigValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := opts.load(); err != nil {
				return err
			}
			fmt.Fprintln(opts.stdout, "config: ok")
			return nil
		},
	}
}

func newConfigPrintCmd(opts *options) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				res, err := opts.load()
				if err != nil {
					return err
				}
				cfg = res.Config
				for _, f := range res.Files {
					fmt.Fprintf(opts.stdout, "# loaded: %s\n", f)
				}
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprint(opts.stdout, string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print built-in defaults (no files)")
	return cmd
}

func newConfigExplainCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <yaml.path>",
		Short: "Show a config value and where it was set",
		Long:  "Show a config value and where it was set. Known paths:\n  " + strings.Join(config.ExplainPaths(), "\n  "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.load()
			if err != nil {
				return err
			}
			value, src, err := config.Explain(res, args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(value)
			if err != nil {
				return fmt.Errorf("failed to marshal value: %w", err)
			}
			fmt.Fprintf(opts.stdout, "path: %s\n", args[0])
			fmt.Fprintf(opts.stdout, "source: %s\n", src)
			fmt.Fprintf(opts.stdout, "value:\n%s", out)
			return nil
		},
	}
}

func newConfigEditCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit settings interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.load()
			if err != nil {
				return err
			}
			path := opts.configPath
			if path == "" {
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}
			status := "runeditor"
			if st, err := querySession(cmd.Context(), opts); err == nil {
				status = st.Summary()
			}
			return tui.Run(res, path, status)
		},
	}
}
