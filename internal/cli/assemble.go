package cli

import (
	"fmt"

	"github.com/skosovsky/conveyor"
	"github.com/skosovsky/conveyor/assemble"

	"github.com/spf13/cobra"
)

type renderFlags struct {
	packagesOpts string
	extra        string
	exclude      string
	translate    bool
	listAllVars  bool
	dryRun       bool
	legacy       bool
}

func (f *renderFlags) register(cmd *cobra.Command, overrides bool) {
	fl := cmd.Flags()
	fl.StringVarP(&f.packagesOpts, "packages-opts", "o", assemble.DefaultPackagesOpts, "options to pass to the %packages directive")
	fl.BoolVar(&f.translate, "translate", false, "substitute @@VAR@@ tokens from the environment")
	fl.BoolVar(&f.legacy, "legacy-mode", false, "legacy mode: omit %end terminators for older installers")
	if !overrides {
		return
	}
	fl.StringVarP(&f.extra, "extra-parts", "e", "", `extra parts, e.g. "section1:partA,partB;section2:partD"`)
	fl.StringVarP(&f.exclude, "exclude-parts", "x", "", `excluded parts, e.g. "section1:partA,partB;section2:partD"`)
	fl.BoolVar(&f.listAllVars, "list-all-vars", false, "also list all meta-vars used by the template")
	fl.BoolVar(&f.dryRun, "dry-run", false, "print the header and variable summary only")
}

func (f *renderFlags) options(a *app) (assemble.Options, error) {
	extra, err := conveyor.ParseSelection(f.extra)
	if err != nil {
		return assemble.Options{}, fmt.Errorf("--extra-parts: %w", err)
	}
	exclude, err := conveyor.ParseSelection(f.exclude)
	if err != nil {
		return assemble.Options{}, fmt.Errorf("--exclude-parts: %w", err)
	}
	return assemble.Options{
		PackagesOpts: a.cfg.PackagesOpts,
		Extra:        extra,
		Exclude:      exclude,
		Translate:    f.translate,
		Legacy:       f.legacy,
		DryRun:       f.dryRun,
		VarSummary:   f.listAllVars,
	}, nil
}

func assembleCmd(a *app) *cobra.Command {
	var (
		templateID string
		rf         renderFlags
	)
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Render a template and write the kickstart to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := rf.options(a)
			if err != nil {
				return err
			}
			eng, err := a.open()
			if err != nil {
				return err
			}
			bp, err := eng.Store().Get(templateID)
			if err != nil {
				return err
			}
			r := assemble.New(eng.Registry(), assemble.WithLogger(a.logger))
			return r.Render(cmd.OutOrStdout(), bp, opts)
		},
	}
	cmd.Flags().StringVarP(&templateID, "template-id", "t", "", "template ID")
	_ = cmd.MarkFlagRequired("template-id")
	rf.register(cmd, true)
	return cmd
}

func diffCmd(a *app) *cobra.Command {
	var (
		templateID string
		against    string
		rf         renderFlags
	)
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show how the rendered kickstarts of two templates differ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := rf.options(a)
			if err != nil {
				return err
			}
			eng, err := a.open()
			if err != nil {
				return err
			}
			from, err := eng.Store().Get(templateID)
			if err != nil {
				return err
			}
			to, err := eng.Store().Get(against)
			if err != nil {
				return err
			}
			r := assemble.New(eng.Registry(), assemble.WithLogger(a.logger))
			out, err := r.Diff(from, to, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "--- %s\n+++ %s\n%s", templateID, against, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateID, "template-id", "t", "", "template ID")
	cmd.Flags().StringVarP(&against, "against", "a", "", "template ID to compare with")
	_ = cmd.MarkFlagRequired("template-id")
	_ = cmd.MarkFlagRequired("against")
	rf.register(cmd, false)
	return cmd
}
