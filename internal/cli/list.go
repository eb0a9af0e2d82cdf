package cli

import (
	"fmt"
	"regexp"

	"github.com/skosovsky/conveyor/inspect"

	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	if format != formatText && format != formatYAML {
		return fmt.Errorf("unknown --format %q (want %s or %s)", format, formatText, formatYAML)
	}
	return nil
}

func lspartsCmd(a *app) *cobra.Command {
	var (
		listVars bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "lsparts",
		Short: "List all available parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			eng, err := a.open()
			if err != nil {
				return err
			}
			parts, err := inspect.New(eng.Registry(), eng.Store()).Parts(listVars)
			if err != nil {
				return err
			}
			if format == formatYAML {
				return inspect.WriteYAML(cmd.OutOrStdout(), parts)
			}
			return inspect.WriteParts(cmd.OutOrStdout(), parts)
		},
	}
	cmd.Flags().BoolVar(&listVars, "list-vars", false, "include meta-variable information")
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or yaml")
	return cmd
}

func lstemplatesCmd(a *app) *cobra.Command {
	var (
		q      inspect.Query
		format string
	)
	cmd := &cobra.Command{
		Use:   "lstemplates [filter-regex]",
		Short: "List all available templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if len(args) == 1 {
				re, err := regexp.Compile(args[0])
				if err != nil {
					return fmt.Errorf("filter: %w", err)
				}
				q.Filter = re
			}
			eng, err := a.open()
			if err != nil {
				return err
			}
			templates, err := inspect.New(eng.Registry(), eng.Store()).Templates(cmd.Context(), q)
			if err != nil {
				return err
			}
			if format == formatYAML {
				return inspect.WriteYAML(cmd.OutOrStdout(), templates)
			}
			return inspect.WriteTemplates(cmd.OutOrStdout(), templates, q)
		},
	}
	cmd.Flags().BoolVar(&q.Parts, "list-parts", false, "list template parts")
	cmd.Flags().BoolVar(&q.Vars, "list-vars", false, "list used meta-vars")
	cmd.Flags().BoolVar(&q.AllParts, "list-all-parts", false, "with --list-parts, also list unused parts (marked --)")
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or yaml")
	return cmd
}
